package extension

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/viant/gxl/model/ast"
	"github.com/viant/gxl/model/types"
	"github.com/viant/gxl/model/value"
	"github.com/viant/structology/conv"
)

// Actions provides action services
type Actions struct {
	services  map[string]types.Service
	converter *conv.Converter
	mux       sync.RWMutex
}

// Lookup returns a service by name
func (s *Actions) Lookup(name string) types.Service {
	s.mux.RLock()
	defer s.mux.RUnlock()
	return s.services[strings.ToLower(name)]
}

// Register registers a service
func (s *Actions) Register(services ...types.Service) {
	s.mux.Lock()
	defer s.mux.Unlock()
	for _, service := range services {
		s.services[strings.ToLower(service.Name())] = service
	}
}

// Names returns registered service names
func (s *Actions) Names() []string {
	s.mux.RLock()
	defer s.mux.RUnlock()
	ret := make([]string, 0, len(s.services))
	for name := range s.services {
		ret = append(ret, name)
	}
	return ret
}

// Method is a resolved action call target.
type Method struct {
	Service    types.Service
	Signature  *types.Signature
	Executable types.Executable
	converter  *conv.Converter
}

// Name returns service.method
func (m *Method) Name() string {
	return m.Service.Name() + "." + m.Signature.Name
}

// Resolve finds the method invoked by node: service.method, service with its default method,
// or a service.method alias given as one dotted name.
func (s *Actions) Resolve(node *ast.Action) (*Method, error) {
	return s.ResolveName(node.Service, node.Method)
}

// ResolveName finds service.method; an empty method selects the service default.
func (s *Actions) ResolveName(serviceName, methodName string) (*Method, error) {
	if methodName == "" {
		if idx := strings.Index(serviceName, "."); idx != -1 {
			serviceName, methodName = serviceName[:idx], serviceName[idx+1:]
		}
	}
	service := s.Lookup(serviceName)
	if service == nil {
		return nil, types.NewArgsError("unknown action %s", serviceName)
	}
	if methodName == "" {
		defaulter, ok := service.(types.DefaultMethoder)
		if !ok {
			return nil, types.NewArgsError("action %s requires a method", serviceName)
		}
		methodName = defaulter.DefaultMethod()
	}
	methodName = strings.ToLower(methodName)
	signature := service.Methods().Lookup(methodName)
	if signature == nil {
		return nil, types.NewMethodNotFoundError(serviceName + "." + methodName)
	}
	executable, err := service.Method(methodName)
	if err != nil {
		return nil, err
	}
	return &Method{Service: service, Signature: signature, Executable: executable, converter: s.converter}, nil
}

// Args maps call arguments to input field names; a positional first argument goes to the default field.
func (m *Method) Args(args []*ast.Arg, values []value.Value) (value.Object, error) {
	ret := value.Object{}
	for i, arg := range args {
		name := arg.Name
		if name == "" {
			if i > 0 || m.Signature.Default == "" {
				return nil, types.NewArgsError("%s: positional argument %d requires a name", m.Name(), i+1)
			}
			name = m.Signature.Default
		}
		if _, ok := ret.Get(name); ok {
			return nil, types.NewArgsError("%s: duplicate argument %s", m.Name(), name)
		}
		ret.Set(name, values[i])
	}
	return ret, nil
}

// Bind converts expanded arguments into a new typed input and allocates the output.
func (m *Method) Bind(args value.Object) (input, output interface{}, err error) {
	input = newInstance(m.Signature.Input)
	output = newInstance(m.Signature.Output)
	if input == nil {
		return nil, output, nil
	}
	fields := inputFields(m.Signature.Input)
	src := map[string]interface{}{}
	for key, v := range args {
		field, ok := fields[normalize(key)]
		if !ok {
			return nil, nil, types.NewArgsError("%s: unknown argument %s", m.Name(), strings.ToLower(key))
		}
		src[field] = v.Interface()
	}
	if err = m.converter.Convert(src, input); err != nil {
		return nil, nil, types.NewArgsError("%s: %v", m.Name(), err)
	}
	return input, output, nil
}

func newInstance(t reflect.Type) interface{} {
	if t == nil {
		return nil
	}
	if t.Kind() == reflect.Ptr {
		return reflect.New(t.Elem()).Interface()
	}
	return reflect.New(t).Interface()
}

// inputFields indexes struct fields by normalized json name and Go name.
func inputFields(t reflect.Type) map[string]string {
	if t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	ret := map[string]string{}
	if t.Kind() != reflect.Struct {
		return ret
	}
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		ret[normalize(field.Name)] = field.Name
		if tag := field.Tag.Get("json"); tag != "" && tag != "-" {
			ret[normalize(strings.Split(tag, ",")[0])] = field.Name
		}
	}
	return ret
}

func normalize(name string) string {
	return strings.ToLower(strings.ReplaceAll(name, "_", ""))
}

// String describes registered services for diagnostics.
func (s *Actions) String() string {
	return fmt.Sprintf("actions%v", s.Names())
}

// NewActions creates a new action registry
func NewActions(services ...types.Service) *Actions {
	ret := &Actions{
		services:  make(map[string]types.Service),
		converter: conv.NewConverter(conv.DefaultOptions()),
	}
	ret.Register(services...)
	return ret
}

// Dispatcher is implemented by services forwarding a call to the method named by one of its arguments.
type Dispatcher interface {
	DispatchArg() string
}

// Effect reports whether calling node through m may have side effects. A dispatching call takes
// the effect of its target when the alias is a literal; an alias known only at run time counts as effect.
func (s *Actions) Effect(m *Method, node *ast.Action) bool {
	if m.Signature.Effect {
		return true
	}
	dispatcher, ok := m.Service.(Dispatcher)
	if !ok {
		return false
	}
	var alias *ast.Arg
	for i, arg := range node.Args {
		if strings.EqualFold(arg.Name, dispatcher.DispatchArg()) || (i == 0 && arg.Name == "") {
			alias = arg
			break
		}
	}
	if alias == nil || alias.Value.Kind != value.KindString || strings.Contains(alias.Value.Str, "${") {
		return true
	}
	target, err := s.ResolveName(alias.Value.Str, "")
	if err != nil {
		return true
	}
	return s.Effect(target, &ast.Action{})
}

package shell

// Input represents a shell action call
type Input struct {
	Cmd     string `json:"cmd,omitempty" description:"command to run, expanded against the variable space"`
	ArgFile string `json:"arg_file,omitempty" description:"*.data.json file merged into globals before the command runs"`
	OutVar  string `json:"out_var,omitempty" description:"global receiving trimmed stdout"`
	Expect  []int  `json:"expect,omitempty" description:"accepted exit codes, defaults to [0]"`
	Quiet   bool   `json:"quiet,omitempty" description:"do not echo child output"`
	Sudo    bool   `json:"sudo,omitempty" description:"run through sudo"`
}

// Init applies defaults
func (i *Input) Init() {
	if len(i.Expect) == 0 {
		i.Expect = []int{0}
	}
}

// Expected reports whether code is an accepted exit code
func (i *Input) Expected(code int) bool {
	for _, candidate := range i.Expect {
		if candidate == code {
			return true
		}
	}
	return false
}

// Command returns the command line to run
func (i *Input) Command() string {
	if i.Sudo {
		return "sudo " + i.Cmd
	}
	return i.Cmd
}

// Output represents a shell action result
type Output struct {
	Stdout string `json:"stdout,omitempty"`
	Status int    `json:"status"`
}

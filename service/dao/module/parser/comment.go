package parser

// stripComments blanks // and /* */ comments outside of string literals.
// Newlines are kept so token coordinates match the original source.
func stripComments(input []byte) []byte {
	ret := make([]byte, len(input))
	copy(ret, input)
	size := len(ret)
	for i := 0; i < size; i++ {
		switch ret[i] {
		case '"':
			i = skipQuoted(ret, i)
		case 'r':
			if i > 0 && (isLetter(ret[i-1]) || isDigit(ret[i-1]) || ret[i-1] == '_') {
				continue
			}
			if end := skipRaw(ret, i); end > i {
				i = end
			}
		case '/':
			if i+1 >= size {
				continue
			}
			switch ret[i+1] {
			case '/':
				for ; i < size && ret[i] != '\n'; i++ {
					ret[i] = ' '
				}
			case '*':
				j := i
				for ; j < size; j++ {
					if j+1 < size && ret[j] == '*' && ret[j+1] == '/' && j > i+1 {
						ret[j], ret[j+1] = ' ', ' '
						j++
						break
					}
					if ret[j] != '\n' {
						ret[j] = ' '
					}
				}
				i = j
			}
		}
	}
	return ret
}

func skipQuoted(input []byte, start int) int {
	for i := start + 1; i < len(input); i++ {
		switch input[i] {
		case '\\':
			i++
		case '"':
			return i
		}
	}
	return len(input)
}

func skipRaw(input []byte, start int) int {
	i := start + 1
	hashes := 0
	for i < len(input) && input[i] == '#' {
		hashes++
		i++
	}
	if i >= len(input) || input[i] != '"' {
		return start
	}
	for j := i + 1; j < len(input); j++ {
		if input[j] != '"' {
			continue
		}
		k := 0
		for k < hashes && j+1+k < len(input) && input[j+1+k] == '#' {
			k++
		}
		if k == hashes {
			return j + hashes
		}
	}
	return len(input)
}

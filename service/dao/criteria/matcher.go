package criteria

import (
	"strconv"
	"strings"

	"github.com/viant/ossim/model/process"
	"github.com/viant/ossim/service/dao"
)

// Field names a process filter can use.
const (
	FieldState    = "State"
	FieldPriority = "Priority"
	FieldName     = "Name"
	FieldID       = "ID"
)

// Matches reports whether p satisfies every parameter. Unknown parameter
// names are ignored; a value of an unsupported type never matches.
func Matches(p *process.Process, parameters []*dao.Parameter) bool {
	for _, parameter := range parameters {
		if parameter == nil {
			continue
		}
		var actual string
		switch parameter.Name {
		case FieldState:
			actual = string(p.State)
		case FieldPriority:
			actual = p.Priority.String()
		case FieldName:
			actual = p.Name
		case FieldID:
			actual = strconv.Itoa(p.ID)
		default:
			continue
		}
		if !matchValue(actual, parameter.Value) {
			return false
		}
	}
	return true
}

func matchValue(actual string, expected interface{}) bool {
	switch value := expected.(type) {
	case string:
		return strings.EqualFold(actual, value)
	case []string:
		for _, candidate := range value {
			if strings.EqualFold(actual, candidate) {
				return true
			}
		}
		return false
	case process.State:
		return actual == string(value)
	case []process.State:
		for _, candidate := range value {
			if actual == string(candidate) {
				return true
			}
		}
		return false
	case process.Priority:
		return actual == value.String()
	case []process.Priority:
		for _, candidate := range value {
			if actual == candidate.String() {
				return true
			}
		}
		return false
	case int:
		return actual == strconv.Itoa(value)
	case []int:
		for _, candidate := range value {
			if actual == strconv.Itoa(candidate) {
				return true
			}
		}
		return false
	}
	return false
}

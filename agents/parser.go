package agents

import (
	"strings"

	"github.com/tidwall/gjson"
)

const (
	actionCallTool    = "call_tool"
	actionFinalAnswer = "final_answer"
)

// toolCall is a parsed {"action":"call_tool",...} request.
type toolCall struct {
	Tool string
	Args map[string]any
}

// parseAction looks for an action object in a model response.
// It returns the call when the model asked for a tool, and otherwise the
// text to present as the final answer.
func parseAction(response string) (*toolCall, string) {
	for i := strings.IndexByte(response, '{'); i != -1; {
		candidate := trimJSON(response[i:])
		if gjson.Valid(candidate) {
			obj := gjson.Parse(candidate)
			switch obj.Get("action").String() {
			case actionCallTool:
				return &toolCall{Tool: obj.Get("tool").String(), Args: argsOf(obj.Get("args"))}, ""
			case actionFinalAnswer:
				return nil, obj.Get("answer").String()
			}
		}

		next := strings.IndexByte(response[i+1:], '{')
		if next == -1 {
			break
		}
		i += next + 1
	}
	return nil, strings.TrimSpace(response)
}

func argsOf(r gjson.Result) map[string]any {
	if !r.IsObject() {
		return map[string]any{}
	}
	args, _ := r.Value().(map[string]any)
	return args
}

// trimJSON strips a BOM, whitespace and anything after the last closing brace.
func trimJSON(s string) string {
	s = strings.TrimPrefix(s, "\ufeff")
	s = strings.TrimSpace(s)
	if end := strings.LastIndexByte(s, '}'); end != -1 {
		s = s[:end+1]
	}
	return strings.TrimSpace(s)
}

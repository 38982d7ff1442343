package formatting

import (
	"encoding/json"
	"fmt"
	"strings"

	"stackctl/internal/api"
)

// PrettyJSON formats any value as indented JSON for human-readable display.
// It handles marshaling errors gracefully by falling back to fmt.Sprintf.
//
// Example:
//
//	data := map[string]interface{}{"name": "test", "value": 42}
//	fmt.Println(formatting.PrettyJSON(data))
//	// Output:
//	// {
//	//   "name": "test",
//	//   "value": 42
//	// }
func PrettyJSON(v interface{}) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}

// ordered returns the entries of status in the given order.
func ordered(status map[string]api.ServiceInfo, order []string) []api.ServiceInfo {
	infos := make([]api.ServiceInfo, 0, len(order))
	for _, id := range order {
		if info, ok := status[id]; ok {
			infos = append(infos, info)
		}
	}
	return infos
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func joinOrDash(items []string) string {
	if len(items) == 0 {
		return "-"
	}
	return strings.Join(items, ", ")
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

package formatting

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stackctl/internal/api"
)

func TestPrettyJSON_ServiceInfo(t *testing.T) {
	tests := []struct {
		name    string
		info    api.ServiceInfo
		present []string
		absent  []string
	}{
		{
			name: "failed service with endpoints",
			info: api.ServiceInfo{
				Name:         "minio",
				Namespace:    "storage",
				Status:       api.StatusFailed,
				Health:       api.HealthUnhealthy,
				Enabled:      true,
				Version:      "7.1.1",
				Installed:    true,
				Dependencies: []string{"cert-manager"},
				Endpoints: []api.Endpoint{
					{Name: "console", URL: "https://minio.dev.example.local", Type: "web"},
				},
				LastError: "timed out waiting for minio",
			},
			present: []string{
				`"status": "failed"`,
				`"health": "unhealthy"`,
				`"lastError": "timed out waiting for minio"`,
				`"endpoints": [`,
				`"url": "https://minio.dev.example.local"`,
				`"dependencies": [`,
			},
		},
		{
			name: "bare service omits empty optional fields",
			info: api.ServiceInfo{
				Name:    "istio",
				Status:  api.StatusNotInstalled,
				Health:  api.HealthUnknown,
				Version: "1.20.0",
			},
			present: []string{
				`"status": "not_installed"`,
				`"enabled": false`,
				`"installed": false`,
				`"namespace": ""`,
			},
			absent: []string{`"lastError"`, `"endpoints"`, `"dependencies"`},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := PrettyJSON(tt.info)

			for _, s := range tt.present {
				assert.Contains(t, out, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, out, s)
			}

			var decoded api.ServiceInfo
			require.NoError(t, json.Unmarshal([]byte(out), &decoded))
			assert.Equal(t, tt.info, decoded)
		})
	}
}

func TestPrettyJSON_Indents(t *testing.T) {
	out := PrettyJSON(map[string][]string{"istio": {"cert-manager"}})
	assert.Equal(t, "{\n  \"istio\": [\n    \"cert-manager\"\n  ]\n}", out)
}

func TestPrettyJSON_FallsBackOnUnmarshalableValue(t *testing.T) {
	ch := make(chan api.ServiceInfo)
	out := PrettyJSON(ch)

	assert.NotEmpty(t, out)
	assert.Regexp(t, `^0x[0-9a-f]+$`, out)
}

func TestOrdered_SkipsUnknownIDs(t *testing.T) {
	status := map[string]api.ServiceInfo{
		"istio":        {Name: "istio"},
		"cert-manager": {Name: "cert-manager"},
		"minio":        {Name: "minio"},
	}

	infos := ordered(status, []string{"minio", "absent", "istio", "cert-manager"})

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{"minio", "istio", "cert-manager"}, names)
}

func TestCellHelpers(t *testing.T) {
	tests := []struct {
		name     string
		got      string
		expected string
	}{
		{name: "orDash empty", got: orDash(""), expected: "-"},
		{name: "orDash value", got: orDash("storage"), expected: "storage"},
		{name: "joinOrDash empty", got: joinOrDash(nil), expected: "-"},
		{name: "joinOrDash values", got: joinOrDash([]string{"istio", "cert-manager"}), expected: "istio, cert-manager"},
		{name: "yesNo true", got: yesNo(true), expected: "yes"},
		{name: "yesNo false", got: yesNo(false), expected: "no"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.got)
		})
	}
}

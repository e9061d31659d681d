package mcp

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/go-viper/mapstructure/v2"
)

// ArgumentGetter is implemented by mcp.CallToolRequest.
type ArgumentGetter interface {
	GetArguments() map[string]any
}

// bindArguments decodes tool arguments into target using its json tags.
// Clients sometimes send every value as a string, including JSON-encoded
// arrays, so strings are coerced into the target field's kind.
func bindArguments[T any](request ArgumentGetter, target *T) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			jsonStringHook,
			mapstructure.StringToSliceHookFunc(","),
		),
		Result:  target,
		TagName: "json",
	})
	if err != nil {
		return err
	}
	return decoder.Decode(request.GetArguments())
}

func jsonStringHook(from reflect.Type, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	raw := strings.TrimSpace(data.(string))
	if raw == "" {
		return data, nil
	}

	switch to.Kind() {
	case reflect.Slice:
		if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
			slicePtr := reflect.New(to)
			if err := json.Unmarshal([]byte(raw), slicePtr.Interface()); err == nil {
				return slicePtr.Elem().Interface(), nil
			}
		}
	case reflect.Bool:
		if raw == "true" || raw == "false" {
			return raw == "true", nil
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		var n json.Number
		if err := json.Unmarshal([]byte(raw), &n); err == nil {
			return n, nil
		}
	}
	return data, nil
}

package yahoo

import "encoding/json"

func decode(body string, out any) error {
	return json.Unmarshal([]byte(body), out)
}

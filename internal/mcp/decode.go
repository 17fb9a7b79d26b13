package mcp

import (
	"encoding/json"
	stderrors "errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/tally/internal/errors"
)

// decode unmarshals tool arguments into T. Arguments of the wrong JSON type
// come back as INVALID_REQUEST naming the offending field.
func decode[T any](req mcp.CallToolRequest) (T, error) {
	var result T
	b, err := json.Marshal(req.GetArguments())
	if err != nil {
		return result, errors.NewInvalidRequest("arguments are not JSON: " + err.Error())
	}
	if err := json.Unmarshal(b, &result); err != nil {
		var typeErr *json.UnmarshalTypeError
		if stderrors.As(err, &typeErr) && typeErr.Field != "" {
			return result, errors.NewInvalidRequest("invalid type for " + typeErr.Field + ": want " + typeErr.Type.String())
		}
		return result, errors.NewInvalidRequest(err.Error())
	}
	return result, nil
}

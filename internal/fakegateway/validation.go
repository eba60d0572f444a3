package fakegateway

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// fieldError is one validation failure; path names the nested resource,
// e.g. ["customer", "credit_card"].
type fieldError struct {
	path      []string
	attribute string
	code      string
	message   string
}

// renderErrors answers 422 with an api-error-response document.
func (s *Server) renderErrors(c *fiber.Ctx, params map[string]any, errs []fieldError) error {
	tree := map[string]any{"errors": []any{}}
	messages := make([]string, 0, len(errs))
	for _, fe := range errs {
		node := tree
		for _, p := range fe.path {
			child, ok := node[p].(map[string]any)
			if !ok {
				child = map[string]any{"errors": []any{}}
				node[p] = child
			}
			node = child
		}
		node["errors"] = append(node["errors"].([]any), map[string]any{
			"attribute": fe.attribute,
			"code":      fe.code,
			"message":   fe.message,
		})
		messages = append(messages, fe.message)
	}

	return s.render(c, http.StatusUnprocessableEntity, "api_error_response", map[string]any{
		"errors":  tree,
		"params":  scrubParams(params),
		"message": strings.Join(messages, "\n"),
	})
}

// scrubParams copies params without card numbers or CVVs.
func scrubParams(params map[string]any) map[string]any {
	out := make(map[string]any, len(params))
	for k, v := range params {
		if k == "number" || k == "cvv" {
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = scrubParams(nested)
			continue
		}
		out[k] = v
	}
	return out
}

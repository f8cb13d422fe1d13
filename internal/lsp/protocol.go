package lsp

import (
	"encoding/json"
	"path/filepath"
	"strings"

	"github.com/tidwall/gjson"
)

// Position is a 0-indexed line/character pair in UTF-16 code units, the
// protocol's coordinate space.
type Position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

// Range is a half-open [Start, End) span of positions.
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// FileURI converts a filesystem path to a file:// URI.
func FileURI(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return "file://" + abs
}

type request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// marshalRequest builds an id-less request body; SendRequest injects the id.
func marshalRequest(method string, params any) []byte {
	body, err := json.Marshal(request{JSONRPC: "2.0", Method: method, Params: params})
	if err != nil {
		// Only reachable with an unmarshalable params type, which the
		// builders below never construct.
		return []byte(`{"jsonrpc":"2.0","method":"` + method + `"}`)
	}
	return body
}

// initializationOptions are keyed by the server binary's name.
var initializationOptions = map[string]any{
	"clangd": map[string]any{
		"clangdFileStatus": true,
	},
}

// InitializeRequest builds the initialize request for a server binary.
func InitializeRequest(client, rootURI string) []byte {
	params := map[string]any{
		"processId": nil,
		"rootUri":   rootURI,
		"capabilities": map[string]any{
			"textDocument": map[string]any{
				"synchronization": map[string]any{
					"didSave": false,
				},
				"semanticTokens": map[string]any{
					"requests": map[string]any{
						"full": true,
					},
					"tokenTypes": []string{
						"namespace", "type", "class", "enum", "struct",
						"typeParameter", "parameter", "variable", "property",
						"enumMember", "function", "method", "macro", "keyword",
						"modifier", "comment", "string", "number", "operator",
					},
					"tokenModifiers": []string{},
					"formats":        []string{"relative"},
				},
			},
		},
	}
	if opts, ok := initializationOptions[client]; ok {
		params["initializationOptions"] = opts
	}
	return marshalRequest("initialize", params)
}

// InitializedNotification builds the initialized notification.
func InitializedNotification() []byte {
	return marshalRequest("initialized", map[string]any{})
}

// DidOpenNotification announces a newly opened document.
func DidOpenNotification(uri, languageID, text string, version int) []byte {
	return marshalRequest("textDocument/didOpen", map[string]any{
		"textDocument": map[string]any{
			"uri":        uri,
			"languageId": languageID,
			"version":    version,
			"text":       text,
		},
	})
}

// DidChangeFullNotification replaces the document's whole content.
func DidChangeFullNotification(uri string, version int, text string) []byte {
	return marshalRequest("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{
			"uri":     uri,
			"version": version,
		},
		"contentChanges": []any{
			map[string]any{"text": text},
		},
	})
}

// DidChangeRangeNotification replaces one range of the document.
func DidChangeRangeNotification(uri string, version int, rng Range, text string) []byte {
	return marshalRequest("textDocument/didChange", map[string]any{
		"textDocument": map[string]any{
			"uri":     uri,
			"version": version,
		},
		"contentChanges": []any{
			map[string]any{
				"range": rng,
				"text":  text,
			},
		},
	})
}

// SemanticTokensRequest asks for the full semantic token set of a document.
func SemanticTokensRequest(uri string) []byte {
	return marshalRequest("textDocument/semanticTokens/full", map[string]any{
		"textDocument": map[string]any{"uri": uri},
	})
}

// ResponseID extracts the numeric id of a response body. ok is false for
// notifications and responses without an id.
func ResponseID(body []byte) (int64, bool) {
	v := gjson.GetBytes(body, "id")
	if v.Type != gjson.Number {
		return 0, false
	}
	return v.Int(), true
}

// Method extracts the method of an inbound message, empty for responses.
func Method(body []byte) string {
	return gjson.GetBytes(body, "method").String()
}

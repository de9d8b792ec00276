package schema

// V1Schema is the log entry schema shipped with this module. It combines
// declarative 2020-12 constraints with the didEntry and didVersionTime
// keywords; the context property for cross-entry time ordering is the default
// previousVersionTime.
type V1Schema struct{}

func (V1Schema) JSONSchema() string { return v1SchemaText }

const v1SchemaText = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"title": "DID log entry",
	"type": "object",
	"didEntry": true,
	"didVersionTime": true,
	"properties": {
		"versionId": {
			"type": "string",
			"pattern": "^[1-9][0-9]*-z[1-9A-HJ-NP-Za-km-z]+$"
		},
		"versionTime": {
			"type": "string"
		},
		"parameters": {
			"type": "object"
		},
		"state": {
			"type": "object"
		},
		"proof": {
			"type": "array",
			"minItems": 1,
			"items": { "type": "object" }
		},
		"previousVersionTime": {
			"type": "string"
		}
	},
	"required": ["versionId", "versionTime", "parameters", "state", "proof"]
}`

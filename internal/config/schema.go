package config

// planSchema is the JSON Schema every benchmark plan must satisfy
// before it is decoded. Controller options are deliberately left open:
// each controller factory validates its own opts at construction.
const planSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "required": ["label", "workers", "rounds"],
  "properties": {
    "label": { "type": "string", "minLength": 1 },
    "workers": { "type": "integer", "minimum": 1 },
    "rounds": {
      "type": "array",
      "minItems": 1,
      "items": {
        "type": "object",
        "required": ["label", "rateControl"],
        "properties": {
          "label": { "type": "string", "minLength": 1 },
          "txNumber": { "type": "integer", "minimum": 1 },
          "duration": { "type": "string", "minLength": 2 },
          "rateControl": {
            "type": "object",
            "required": ["type"],
            "properties": {
              "type": { "type": "string", "minLength": 1 },
              "opts": { "type": "object" }
            }
          }
        },
        "anyOf": [
          { "required": ["txNumber"] },
          { "required": ["duration"] }
        ]
      }
    }
  }
}`

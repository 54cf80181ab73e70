package keywords

const extractionSchema = `{
  "type": "object",
  "properties": {
    "phrase": { "type": "string" },
    "versions": { "type": "array", "items": { "type": "string" } },
    "years": { "type": "array", "items": { "type": "string", "pattern": "^[0-9]{4}$" } },
    "relative_years": { "type": "boolean" },
    "seasons": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "season": { "type": "string", "enum": ["spring", "summer", "autumn", "winter"] },
          "year": { "type": "integer" }
        },
        "required": ["season"]
      }
    },
    "magazine_word": { "type": "boolean" }
  },
  "required": ["phrase"]
}`

const extractionPrompt = `Extract search structure from the user's question and return it as JSON.

Output ONLY valid JSON matching this schema. No preamble, no explanation, no
code fences. Start with { and end with }. Schema:

%s

Rules:
- "phrase": the question reduced to a concise search phrase, keeping the
  technology and topic words, dropping filler words. Keep the original casing
  of product names.
- "versions": every explicitly mentioned technology version number, as written
  ("20", "3.2"). Do not invent versions that are not in the question.
- "years": every explicitly mentioned four-digit year, EXCEPT years that
  belong to a season or quarter phrase ("Spring 2025"): those go into
  "seasons" only, never into "years".
- "relative_years": true when the question uses relative temporal words such
  as "latest", "newest", "recent", "upcoming", "this year".
- "seasons": season or quarter words with their year when given. A season
  without a year gets year 0.
- "magazine_word": true when the question contains a print-issue content word
  such as "issue", "magazine", "Ausgabe" or "Heft".
- If nothing applies, use empty arrays and false.`

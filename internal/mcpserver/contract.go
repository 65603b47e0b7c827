package mcpserver

const wireFormatURI = "receitas://wire-format"

// WireFormat describes the JSON shape of a recipe as the recipe API stores
// it. Tool arguments use the same field names.
const WireFormat = `# Recipe Wire Format

A recipe is a JSON object with these fields:

| Field | Type | Notes |
|---|---|---|
| ` + "`id`" + ` | integer | Assigned by the server on create. Never sent in a create body. |
| ` + "`nome`" + ` | string | REQUIRED. Display name, must not be blank. |
| ` + "`tipo`" + ` | string | OPTIONAL category, e.g. ` + "`DOCE`, `SALGADA`, `BEBIDA`" + `. |
| ` + "`ingredientes`" + ` | array of string | Ordered; duplicates and empty strings are allowed. |
| ` + "`modoFazer`" + ` | string | Preparation instructions. |
| ` + "`img`" + ` | string | Image URL. |
| ` + "`custoAproximado`" + ` | number | OPTIONAL, non-negative. |

## Rules

1. Updates replace every field of the record. The ` + "`update_recipe`" + ` tool fills
   omitted fields from the current record before sending.
2. ` + "`ingredientes`" + ` is always sent as an array, never null.
3. Ids are unique within the collection and are never reused by the client.

## Example

` + "```" + `json
{
  "id": 42,
  "nome": "Miojo",
  "tipo": "SALGADA",
  "ingredientes": ["água", "macarrão instantâneo"],
  "modoFazer": "Ferva a água e cozinhe por 3 minutos.",
  "img": "https://example.com/miojo.jpg",
  "custoAproximado": 4.5
}
` + "```" + `
`

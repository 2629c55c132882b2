package agents

const (
	// LabelPrompt asks a vision model for short comma separated labels.
	LabelPrompt = "List up to 5 main objects or elements in this image as simple labels, each 2-3 words max, separated by commas. Do not include 'and', '...', or extra text."

	intentSystemPrompt = "Determine whether the user is asking to find or show images that contain a specific object, person or scenery. Answer only with 'true' or 'false'."

	rephraseSystemPrompt = "Rewrite the user's request as a single question of the form 'Is {description} on this picture?'. Respond with the question only."

	visionSystemPrompt = "You look at one picture and answer a question about it. Respond only 'true' or 'false'."

	visionPromptSuffix = "Answer always only with 'true' or 'false'."

	structuredSystemPrompt = "Extract every image file mentioned in the text. Return JSON with an 'images' array whose items have 'path', 'name' and 'extension'."
)

const imagesSchema = `{
  "type": "object",
  "properties": {
    "images": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "path": {"type": "string"},
          "name": {"type": "string"},
          "extension": {"type": "string"}
        },
        "required": ["path", "name", "extension"]
      }
    }
  },
  "required": ["images"]
}`

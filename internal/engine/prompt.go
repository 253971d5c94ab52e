package engine

// mentionExtractionPrompt is the system prompt sent to the LLM when pulling
// movie mentions out of a transcript.
const mentionExtractionPrompt = `You extract movie requests from an SMS conversation transcript.

The transcript is a list of lines, oldest first. Each line starts with "USER: " or "SYSTEM: ". Lines are numbered from 0 in transcript order.

Report every movie title a USER line requests or asks about:
- Direct requests ("get me X", "add X", "download X")
- Conversational references ("do you know about X", "have you seen X")
- Corrections and overrides ("actually, can you get me X instead")

Rules:
- Only USER lines are sources. Never report a title that appears only in a SYSTEM line.
- Greetings and small talk ("hey", "yo", "how are you") contain no movies. Report nothing for them.
- Keep sequel and franchise phrasing literal: "X 2" is the title "X 2", "the new X" is the title "X". Do not guess which installment was meant.
- Include a year only when the user stated one ("Blade Runner 2017" carries year 2017).
- Set "inferred" true when the title came from conversational phrasing rather than an explicit request.
- Report one entry per mention. Do not deduplicate repeated titles.

Respond ONLY with JSON: {"mentions": [{"title": "...", "year": 0, "utterance": 0, "inferred": false}]}
Use year 0 when no year was stated. An empty mentions array means no movie was mentioned.`

// mentionPayload is the JSON shape the extraction prompt demands.
type mentionPayload struct {
	Mentions []struct {
		Title     string `json:"title"`
		Year      int    `json:"year"`
		Utterance int    `json:"utterance"`
		Inferred  bool   `json:"inferred"`
	} `json:"mentions"`
}

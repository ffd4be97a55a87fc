package insight

// LLM prompt templates, data only.

// digestSystem is the system hint for every digest request.
const digestSystem = `You are a helpful assistant that provides brief insights and summaries.`

// videoDigestPrompt summarizes a transcript.
// Args: focus line (may be empty), transcript text.
const videoDigestPrompt = `Create an engaging summary of the YouTube video transcript below.

1. Title: a title that reflects the video's content.
2. Summary: 5 key points, friendly first-person tone.
3. Key takeaways: the main points and benefits as bullets.
4. Keywords: the most effective keywords for the topic.

Keep it short. Use only what the transcript says.
%s
---

Content to analyze:
%s`

// webDigestPrompt summarizes a fetched page or search result.
// Args: focus line (may be empty), page text.
const webDigestPrompt = `Please provide a brief summary and key insights from the following content.
Respond with a 2 line summary of the website followed by the key insights.
%s
---

%s`

// focusLine is appended to a digest prompt when the caller supplies a hint.
// Args: hint.
const focusLine = "Focus on: %s\n"

// answerSystem is the system hint for follow-up answers.
const answerSystem = `You answer questions about a piece of content using only its summary.
If the summary does not contain the answer, say so plainly.`

// answerPrompt answers a question from a stored digest.
// Args: digest, question.
const answerPrompt = `Summary of the content:
%s

---

Question: %s`

// Suggested follow-up questions returned with summaries.
var (
	videoSuggestions = []string{
		"What is the main idea of this video?",
		"What are the key points discussed?",
		"Can you summarize the video?",
	}
	webSuggestions = []string{
		"Who is the competition of this website?",
		"What is the revenue model of this website?",
		"Who are the alternatives to this website?",
		"How does this website engage with its users?",
		"Are there any user feedback or reviews available for this website?",
		"What community or social features does this website provide?",
		"What technologies used to build this website?",
	}
)

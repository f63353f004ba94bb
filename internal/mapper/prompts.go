package mapper

const systemPrompt = `You are an expert conversation analyst for a corporate multi-agent assistant. Analyze conversations and provide structured analysis as JSON.`

// analysisUserPrompt is filled with duration minutes, message count, and the
// user-authored text of the conversation. Internal agent chatter is kept out
// of the prompt on purpose: the classification targets user intent, and the
// prompt stays bounded no matter how many specialists were invoked.
const analysisUserPrompt = `Analyze this conversation (%.1fm, %d msgs). Only the user's own messages are shown:
%s

Rules:
- Sentiment: "positive"=gratitude/satisfaction, "negative"=frustration/problems, "neutral"=info requests
- Emotions: ["frustration", "satisfaction", "confusion", "urgency"]
- Problems: ["technical_issues", "user_confusion", "system_limitations", "process_inefficiency", "communication_failure", "other"]
- user_confusion: ONLY explicit confusion ("не понимаю") or multiple clarifications
- Categories: ["information", "communication", "other", "project_tasks", "hr", "organizational", "tech_support", "products_info", "department_info", "meetings", "task_management", "faq", "feedback", "statistics", "design_request", "sources_request"]
- Intent: ["technical_help", "process_question", "project_task", "general_info", "coordination"]
- Feedback: extract user feedback about the assistant system performance and behavior (empty array if none)
- Suggestions: extract user suggestions for improving the system or conversation experience (empty array if none)
- Severity: 0-2=success, 3-4=minor issues, 5-6=moderate problems, 7-8=major failures, 9-10=critical
- is_successful: true if the request was fulfilled, false if it failed

JSON format:
{
    "sentiment": "neutral",
    "sentiment_confidence": 0.8,
    "emotions": [],
    "problems": [],
    "problem_severity": 2,
    "problem_extra_info": "",
    "categories": ["information"],
    "intent": ["general_info"],
    "feedback": [],
    "suggestions": [],
    "is_successful": true
}`

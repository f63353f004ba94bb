package analysis

// Sentiment classifies the overall tone of a conversation.
type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNegative Sentiment = "negative"
	SentimentNeutral  Sentiment = "neutral"
)

// Emotion flags emotions present in the user's messages.
type Emotion string

const (
	EmotionFrustration  Emotion = "frustration"
	EmotionSatisfaction Emotion = "satisfaction"
	EmotionConfusion    Emotion = "confusion"
	EmotionUrgency      Emotion = "urgency"
)

// Problem is a detected problem type.
type Problem string

const (
	ProblemTechnicalIssues      Problem = "technical_issues"
	ProblemUserConfusion        Problem = "user_confusion"
	ProblemSystemLimitations    Problem = "system_limitations"
	ProblemProcessInefficiency  Problem = "process_inefficiency"
	ProblemCommunicationFailure Problem = "communication_failure"
	ProblemOther                Problem = "other"
)

// Category classifies what the user was asking about.
type Category string

const (
	CategoryInformation    Category = "information"
	CategoryCommunication  Category = "communication"
	CategoryOther          Category = "other"
	CategoryProjectTasks   Category = "project_tasks"
	CategoryHR             Category = "hr"
	CategoryOrganizational Category = "organizational"
	CategoryTechSupport    Category = "tech_support"
	CategoryProductsInfo   Category = "products_info"
	CategoryDepartmentInfo Category = "department_info"
	CategoryMeetings       Category = "meetings"
	CategoryTaskManagement Category = "task_management"
	CategoryFAQ            Category = "faq"
	CategoryFeedback       Category = "feedback"
	CategoryStatistics     Category = "statistics"
	CategoryDesignRequest  Category = "design_request"
	CategorySourcesRequest Category = "sources_request"
)

// Intent classifies why the user was asking.
type Intent string

const (
	IntentTechnicalHelp   Intent = "technical_help"
	IntentProcessQuestion Intent = "process_question"
	IntentProjectTask     Intent = "project_task"
	IntentGeneralInfo     Intent = "general_info"
	IntentCoordination    Intent = "coordination"
)

// Result is the structured classification the LLM returns for one
// conversation. It is the unit attached to the persisted reporting record.
type Result struct {
	Sentiment           Sentiment  `json:"sentiment"`
	SentimentConfidence float64    `json:"sentiment_confidence"`
	Emotions            []Emotion  `json:"emotions"`
	Problems            []Problem  `json:"problems"`
	ProblemSeverity     int        `json:"problem_severity"`
	ProblemExtraInfo    string     `json:"problem_extra_info"`
	Categories          []Category `json:"categories"`
	Intents             []Intent   `json:"intent"`
	Feedback            []string   `json:"feedback"`
	Suggestions         []string   `json:"suggestions"`
	IsSuccessful        bool       `json:"is_successful"`
}

var validSentiments = map[Sentiment]bool{
	SentimentPositive: true,
	SentimentNegative: true,
	SentimentNeutral:  true,
}

var validEmotions = map[Emotion]bool{
	EmotionFrustration:  true,
	EmotionSatisfaction: true,
	EmotionConfusion:    true,
	EmotionUrgency:      true,
}

var validProblems = map[Problem]bool{
	ProblemTechnicalIssues:      true,
	ProblemUserConfusion:        true,
	ProblemSystemLimitations:    true,
	ProblemProcessInefficiency:  true,
	ProblemCommunicationFailure: true,
	ProblemOther:                true,
}

var validCategories = map[Category]bool{
	CategoryInformation:    true,
	CategoryCommunication:  true,
	CategoryOther:          true,
	CategoryProjectTasks:   true,
	CategoryHR:             true,
	CategoryOrganizational: true,
	CategoryTechSupport:    true,
	CategoryProductsInfo:   true,
	CategoryDepartmentInfo: true,
	CategoryMeetings:       true,
	CategoryTaskManagement: true,
	CategoryFAQ:            true,
	CategoryFeedback:       true,
	CategoryStatistics:     true,
	CategoryDesignRequest:  true,
	CategorySourcesRequest: true,
}

var validIntents = map[Intent]bool{
	IntentTechnicalHelp:   true,
	IntentProcessQuestion: true,
	IntentProjectTask:     true,
	IntentGeneralInfo:     true,
	IntentCoordination:    true,
}

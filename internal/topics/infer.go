package topics

// Infer scans message against TopicRules and then SubjectRules and returns
// the first match. It has no side effects.
func Infer(message string) Delta {
	return InferWith(TopicRules, SubjectRules, message)
}

// InferWith is Infer over caller-supplied tables.
func InferWith(topicRules []TopicRule, subjectRules []SubjectRule, message string) Delta {
	for _, r := range topicRules {
		if r.Pattern.MatchString(message) {
			return Delta{Subject: r.Subject, Topic: r.Topic, Rule: r.Pattern.String()}
		}
	}
	for _, r := range subjectRules {
		if r.Pattern.MatchString(message) {
			return Delta{Subject: r.Subject, Rule: r.Pattern.String()}
		}
	}
	return Delta{}
}

// CoreSubjects are the subjects every install has curated content for.
var CoreSubjects = []string{Mathematics, Physics, Chemistry, Biology, History, Geography, English, ComputerScience}

package question

var fallbackQuestions = []Question{
	{ID: "q1", Prompt: "Which club has more UCL titles?", Options: []string{"FC Barcelona", "Real Madrid", "AC Milan", "Bayern Munich"}, CorrectIndex: 1},
	{ID: "q2", Prompt: "Which league is Arsenal in?", Options: []string{"La Liga", "Bundesliga", "Premier League", "Serie A"}, CorrectIndex: 2},
	{ID: "q3", Prompt: "PSG home city is?", Options: []string{"Madrid", "Paris", "Rome", "Munich"}, CorrectIndex: 1},
	{ID: "q4", Prompt: "Der Klassiker is between?", Options: []string{"Ajax vs PSV", "Juventus vs Inter", "Bayern vs Dortmund", "Chelsea vs Arsenal"}, CorrectIndex: 2},
	{ID: "q5", Prompt: "Which club is nicknamed Rossoneri?", Options: []string{"AC Milan", "Inter Milan", "Juventus", "Napoli"}, CorrectIndex: 0},
	{ID: "q6", Prompt: "FC Barcelona plays at?", Options: []string{"Allianz Arena", "Camp Nou", "San Siro", "Anfield"}, CorrectIndex: 1},
	{ID: "q7", Prompt: "Which club is from Amsterdam?", Options: []string{"Ajax", "PSV", "Feyenoord", "AZ"}, CorrectIndex: 0},
}

// Fallback returns a copy of the built-in question set used when the
// question bank is unavailable or short.
func Fallback() []Question {
	out := make([]Question, len(fallbackQuestions))
	for i, q := range fallbackQuestions {
		q.Options = append([]string(nil), q.Options...)
		out[i] = q
	}
	return out
}

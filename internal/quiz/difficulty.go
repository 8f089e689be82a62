package quiz

// selectDifficulty picks the difficulty for the next question. The first
// third of the session is an easy onboarding phase. After that, the last
// three answers drive the choice: all correct escalates to Hard, at least
// one correct holds at Medium, none correct drops back to Easy. With a
// short history outside the onboarding phase the default is Medium.
func selectDifficulty(totalQuestions int, history []AnswerRecord) Difficulty {
	if len(history) < totalQuestions/3 {
		return Easy
	}
	if len(history) >= 3 {
		recent := history[len(history)-3:]
		correct := 0
		for _, h := range recent {
			if h.IsCorrect {
				correct++
			}
		}
		switch {
		case correct == 3:
			return Hard
		case correct >= 1:
			return Medium
		default:
			return Easy
		}
	}
	return Medium
}

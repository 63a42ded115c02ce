package board

import (
	"fmt"

	"github.com/quizdeck/quizdeck/go/internal/models"
)

const (
	placeholderQuestion = "Enter question here..."
	placeholderAnswer   = "Enter answer here..."
)

// emptyRound builds five placeholder categories with the round's fixed value
// progression: 200..1000 in round one, 400..2000 in the double round.
func emptyRound(baseValue int) models.RoundBoard {
	categories := make([]models.Category, 0, models.CategoriesPerRound)
	for i := 0; i < models.CategoriesPerRound; i++ {
		questions := make([]models.Question, 0, models.QuestionsPerCategory)
		for j := 0; j < models.QuestionsPerCategory; j++ {
			questions = append(questions, models.Question{
				Value:    (j + 1) * baseValue,
				Question: placeholderQuestion,
				Answer:   placeholderAnswer,
			})
		}
		categories = append(categories, models.Category{
			Name:      fmt.Sprintf("Category %d", i+1),
			Questions: questions,
		})
	}
	return models.RoundBoard{Categories: categories}
}

// emptyBoardData seeds a fresh board ready for editing.
func emptyBoardData() BoardData {
	return BoardData{
		Rounds: models.BoardRounds{
			Jeopardy: emptyRound(200),
			Double:   emptyRound(400),
		},
	}
}

// defaultCatalog is the catalog used when no persisted document exists yet.
func defaultCatalog() *Catalog {
	return &Catalog{
		ActiveBoardID: "default",
		Boards: map[string]*StoredBoard{
			"default": {
				Name: "Default Game",
				Data: emptyBoardData(),
			},
		},
	}
}

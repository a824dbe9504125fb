package ai

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// AIService holds the Gemini client and the read-only database connection.
// The service only ever reads, so it is wired to the read-only pool and a
// compromised prompt cannot touch live data.
type AIService struct {
	Client *genai.Client
	DB     *sql.DB
}

// NewAIService initializes the Gemini client.
func NewAIService(apiKey string, dbReadOnly *sql.DB) (*AIService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &AIService{Client: client, DB: dbReadOnly}, nil
}

// GenerateProductDescription drafts storefront copy for a product from its
// configured sets and standout cards. The caller stores the result; nothing
// is written here.
func (s *AIService) GenerateProductDescription(ctx context.Context, productID int64, modelName string) (string, error) {
	if modelName == "" {
		modelName = "gemini-1.5-flash"
	}

	// 1. Collect the facts the copy should mention.
	var name, brand, sport string
	var releaseYear, cardsPerPack int
	var packPrice float64
	err := s.DB.QueryRow(
		"SELECT name, brand, sport, release_year, cards_per_pack, pack_price FROM products WHERE id = ?",
		productID,
	).Scan(&name, &brand, &sport, &releaseYear, &cardsPerPack, &packPrice)
	if err != nil {
		return "", err
	}

	var facts strings.Builder
	fmt.Fprintf(&facts, "Product: %s (%s, %s, %d). %d cards per pack, pack price %.2f.\n",
		name, brand, sport, releaseYear, cardsPerPack, packPrice)

	rows, err := s.DB.Query(`
		SELECT ps.name, ps.is_base, ps.odds_per_pack, COUNT(c.id)
		FROM product_sets ps
		LEFT JOIN cards c ON c.product_set_id = ps.id
		WHERE ps.product_id = ?
		GROUP BY ps.id, ps.name, ps.is_base, ps.odds_per_pack
		ORDER BY ps.position`, productID)
	if err != nil {
		return "", err
	}
	defer rows.Close()

	for rows.Next() {
		var setName string
		var isBase bool
		var odds, count int
		if err := rows.Scan(&setName, &isBase, &odds, &count); err != nil {
			return "", err
		}
		if isBase {
			fmt.Fprintf(&facts, "Base set %q: %d cards.\n", setName, count)
		} else {
			fmt.Fprintf(&facts, "Insert set %q: %d cards, odds 1:%d packs.\n", setName, count, odds)
		}
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	playerRows, err := s.DB.Query(`
		SELECT DISTINCT c.player
		FROM cards c
		JOIN product_sets ps ON c.product_set_id = ps.id
		WHERE ps.product_id = ? AND c.book_value IS NOT NULL
		ORDER BY c.player
		LIMIT 6`, productID)
	if err != nil {
		return "", err
	}
	defer playerRows.Close()

	var players []string
	for playerRows.Next() {
		var player string
		if err := playerRows.Scan(&player); err != nil {
			return "", err
		}
		players = append(players, player)
	}
	if err := playerRows.Err(); err != nil {
		return "", err
	}
	if len(players) > 0 {
		fmt.Fprintf(&facts, "Notable players: %s.\n", strings.Join(players, ", "))
	}

	// 2. Ask the model for the blurb.
	model := s.Client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(
			"You write product descriptions for a trading-card shop. " +
				"Two short paragraphs, collector-focused, no markdown, no invented odds or player names. " +
				"Use only the facts provided.",
		)},
	}

	res, err := model.GenerateContent(ctx, genai.Text(facts.String()))
	if err != nil {
		return "", fmt.Errorf("error generating description: %w", err)
	}

	// 3. Concatenate the text parts of the first candidate.
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}

	var out strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			out.WriteString(string(text))
		}
	}
	if out.Len() == 0 {
		return "", fmt.Errorf("no text in model response")
	}

	return strings.TrimSpace(out.String()), nil
}

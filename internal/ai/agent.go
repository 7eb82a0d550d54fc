// Package ai runs the admin inventory assistant: a Gemini function-calling agent
// that answers questions about stock and sales through read-only tools.
package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"ss-uniforms/internal/database"
	"ss-uniforms/internal/inventory"
	"ss-uniforms/internal/lowstock"
	"ss-uniforms/internal/models"

	"github.com/google/generative-ai-go/genai"
	log "github.com/sirupsen/logrus"
	"google.golang.org/api/option"
	"gorm.io/gorm"
)

const (
	DefaultModel = "gemini-2.0-flash-001"
	maxToolTurns = 4
	dateLayout   = "2006-01-02"
)

var ErrNoAPIKey = errors.New("ai: GEMINI_API_KEY is not configured")

// Assistant answers admin questions over the inventory store.
type Assistant struct {
	APIKey    string
	Model     string
	Store     *inventory.Store
	DB        *gorm.DB
	Threshold int
}

var tools = []*genai.Tool{{
	FunctionDeclarations: []*genai.FunctionDeclaration{
		{
			Name:        "check_inventory",
			Description: "List items with their catalogue, section, stock, price and size variants. Use this for ANY question about an item's price or stock.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"catalogue": {Type: genai.TypeString, Description: "Optional catalogue (school) name to narrow the list"},
				},
			},
		},
		{
			Name:        "get_low_stock",
			Description: "List items and size variants at or below a stock threshold, with severity and a summary.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"threshold": {Type: genai.TypeInteger, Description: "Stock threshold, defaults to 10"},
				},
			},
		},
		{
			Name:        "get_sales_report",
			Description: "Get total sales revenue and number of sales for a date range.",
			Parameters: &genai.Schema{
				Type: genai.TypeObject,
				Properties: map[string]*genai.Schema{
					"start_date": {Type: genai.TypeString, Description: "Start date (YYYY-MM-DD)"},
					"end_date":   {Type: genai.TypeString, Description: "End date (YYYY-MM-DD)"},
				},
				Required: []string{"start_date", "end_date"},
			},
		},
		{
			Name:        "get_dashboard_stats",
			Description: "Get stock value, item count, low stock count, revenue and best sellers.",
		},
	},
}}

// Ask sends message to Gemini and resolves tool calls until a text answer arrives.
func (a *Assistant) Ask(ctx context.Context, message string) (string, error) {
	if a.APIKey == "" {
		return "", ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(a.APIKey))
	if err != nil {
		return "", fmt.Errorf("ai: new client: %w", err)
	}
	defer client.Close()

	name := a.Model
	if name == "" {
		name = DefaultModel
	}
	model := client.GenerativeModel(name)
	model.Tools = tools
	session := model.StartChat()

	resp, err := session.SendMessage(ctx, genai.Text(a.prompt(message)))
	if err != nil {
		return "", fmt.Errorf("ai: send: %w", err)
	}

	for turn := 0; turn < maxToolTurns; turn++ {
		calls := functionCalls(resp)
		if len(calls) == 0 {
			break
		}
		parts := make([]genai.Part, 0, len(calls))
		for _, fc := range calls {
			log.WithFields(log.Fields{"tool": fc.Name, "args": fc.Args}).Debug("Assistant tool call")
			parts = append(parts, genai.FunctionResponse{Name: fc.Name, Response: a.Call(ctx, fc.Name, fc.Args)})
		}
		if resp, err = session.SendMessage(ctx, parts...); err != nil {
			return "", fmt.Errorf("ai: send tool result: %w", err)
		}
	}
	return text(resp), nil
}

func (a *Assistant) prompt(message string) string {
	today := a.Store.Now().Format(dateLayout)
	return fmt.Sprintf(`SYSTEM: Today is %s. You are the stock assistant for SS Uniforms, a school uniform shop. Prices are in Indian rupees.

RULES:
1. READ: If the user asks about the PRICE, STOCK, SIZES or DETAILS of an item, call 'check_inventory' and answer from its result. Never ask the user for an item ID.
2. LOW STOCK: For reorder or shortage questions, call 'get_low_stock'.
3. SALES: For revenue or sales counts over dates, call 'get_sales_report'. "This week" means the last 7 days.
4. OVERVIEW: For totals and best sellers, call 'get_dashboard_stats'.
5. You cannot change stock, prices or records. Tell the user to use the admin screens for that.

USER: %s`, today, message)
}

// Call runs one tool and returns its response payload.
func (a *Assistant) Call(ctx context.Context, name string, args map[string]any) map[string]any {
	switch name {
	case "check_inventory":
		return a.checkInventory(stringArg(args, "catalogue"))
	case "get_low_stock":
		threshold := a.Threshold
		if v, ok := args["threshold"].(float64); ok && v >= 0 {
			threshold = int(v)
		}
		return a.lowStock(threshold)
	case "get_sales_report":
		return a.salesReport(ctx, stringArg(args, "start_date"), stringArg(args, "end_date"))
	case "get_dashboard_stats":
		return a.dashboard()
	default:
		return map[string]any{"error": "unknown tool " + name}
	}
}

type inventoryItem struct {
	ID        string            `json:"id"`
	Name      string            `json:"name"`
	Catalogue string            `json:"catalogue"`
	Section   string            `json:"section"`
	Stock     int               `json:"stock"`
	Price     float64           `json:"price"`
	Sizes     []models.ItemSize `json:"sizes,omitempty"`
}

func (a *Assistant) checkInventory(catalogue string) map[string]any {
	catalogue = strings.ToLower(strings.TrimSpace(catalogue))
	list := []inventoryItem{}
	for _, c := range a.Store.Catalogues() {
		if catalogue != "" && !strings.Contains(strings.ToLower(c.Name), catalogue) {
			continue
		}
		for _, sec := range c.Sections {
			for _, it := range sec.Items {
				list = append(list, inventoryItem{
					ID:        it.ID,
					Name:      it.Name,
					Catalogue: c.Name,
					Section:   string(sec.Name),
					Stock:     it.Stock,
					Price:     it.Price,
					Sizes:     it.Sizes,
				})
			}
		}
	}
	return map[string]any{"inventory": list}
}

func (a *Assistant) lowStock(threshold int) map[string]any {
	rows := lowstock.Build(a.Store.Catalogues(), threshold)
	return map[string]any{
		"threshold": threshold,
		"rows":      rows,
		"summary":   lowstock.Summarize(rows),
	}
}

func (a *Assistant) salesReport(ctx context.Context, startStr, endStr string) map[string]any {
	loc := a.Store.Now().Location()
	start, err1 := time.ParseInLocation(dateLayout, startStr, loc)
	end, err2 := time.ParseInLocation(dateLayout, endStr, loc)
	if err1 != nil || err2 != nil {
		return map[string]any{"error": "Dates must be in YYYY-MM-DD format."}
	}
	end = end.Add(24*time.Hour - time.Nanosecond)

	report, err := database.GetSalesReport(ctx, a.DB, start, end)
	if err != nil {
		log.WithError(err).Error("Assistant sales report failed")
		return map[string]any{"error": "Error calculating sales."}
	}
	return map[string]any{
		"revenue":     report.TotalRevenue,
		"sales_count": report.TotalCount,
	}
}

func (a *Assistant) dashboard() map[string]any {
	snap := a.Store.Snapshot()
	names := make([]string, 0, len(snap.BestSellers))
	for _, it := range snap.BestSellers {
		names = append(names, it.Name)
	}
	return map[string]any{
		"stats":        snap.Stats,
		"analytics":    map[string]float64{"daily": snap.Analytics.DailySales, "weekly": snap.Analytics.WeeklySales, "monthly": snap.Analytics.MonthlySales, "yearly": snap.Analytics.YearlySales},
		"best_sellers": names,
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func functionCalls(resp *genai.GenerateContentResponse) []genai.FunctionCall {
	var calls []genai.FunctionCall
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil
	}
	for _, part := range resp.Candidates[0].Content.Parts {
		if fc, ok := part.(genai.FunctionCall); ok {
			calls = append(calls, fc)
		}
	}
	return calls
}

func text(resp *genai.GenerateContentResponse) string {
	if resp != nil && len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				return string(txt)
			}
		}
	}
	return "I could not find an answer to that."
}

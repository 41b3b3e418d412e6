package service

import (
	"context"
	"fmt"
	"time"

	"github.com/dafibh/spendsmart/spendsmart-backend/internal/domain"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/email"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/util"
	"github.com/dafibh/spendsmart/spendsmart-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// DefaultAlertThreshold is the percentage of a budget that triggers an alert
const DefaultAlertThreshold = 80

var hundred = decimal.NewFromInt(100)

// BudgetAlertConfig holds configuration for the budget alert monitor
type BudgetAlertConfig struct {
	Threshold decimal.Decimal
	Location  *time.Location
}

// BudgetCheckResult summarises one monitor sweep
type BudgetCheckResult struct {
	Checked    int
	Skipped    int
	AlertsSent int
	Failed     int
}

// BudgetUsage is a budget's spend over the alert window
type BudgetUsage struct {
	BudgetID       uuid.UUID       `json:"budgetId"`
	Amount         decimal.Decimal `json:"amount"`
	TotalExpenses  decimal.Decimal `json:"totalExpenses"`
	PercentageUsed decimal.Decimal `json:"percentageUsed"`
}

// BudgetAlertMonitor emails owners whose default account has used at least
// the threshold percentage of their budget, at most once per calendar month
type BudgetAlertMonitor struct {
	budgetRepo      domain.BudgetRepository
	transactionRepo domain.TransactionRepository
	sender          email.Sender
	publisher       websocket.EventPublisher
	threshold       decimal.Decimal
	location        *time.Location
	logger          zerolog.Logger
	now             func() time.Time
}

// NewBudgetAlertMonitor creates a new BudgetAlertMonitor. publisher may be nil.
func NewBudgetAlertMonitor(
	budgetRepo domain.BudgetRepository,
	transactionRepo domain.TransactionRepository,
	sender email.Sender,
	publisher websocket.EventPublisher,
	logger zerolog.Logger,
	config BudgetAlertConfig,
) *BudgetAlertMonitor {
	if config.Threshold.LessThanOrEqual(decimal.Zero) {
		config.Threshold = decimal.NewFromInt(DefaultAlertThreshold)
	}
	if config.Location == nil {
		config.Location = time.UTC
	}
	if publisher == nil {
		publisher = &websocket.NoOpPublisher{}
	}
	return &BudgetAlertMonitor{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
		sender:          sender,
		publisher:       publisher,
		threshold:       config.Threshold,
		location:        config.Location,
		logger:          logger.With().Str("component", "budget_alert_monitor").Logger(),
		now:             time.Now,
	}
}

// Sweep adapts CheckBudgets to the cron worker, counting alerts sent
func (m *BudgetAlertMonitor) Sweep(ctx context.Context) (int, error) {
	result, err := m.CheckBudgets(ctx)
	if err != nil {
		return 0, err
	}
	return result.AlertsSent, nil
}

// CheckBudgets evaluates every budget once. Failures for one budget are
// logged and do not stop the sweep; only failing to list budgets is returned.
func (m *BudgetAlertMonitor) CheckBudgets(ctx context.Context) (*BudgetCheckResult, error) {
	candidates, err := m.budgetRepo.ListAlertCandidates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list budgets: %w", err)
	}

	now := m.now()
	result := &BudgetCheckResult{}

	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		logger := m.logger.With().
			Str("budget_id", c.Budget.ID.String()).
			Str("user_id", c.Budget.UserID.String()).
			Logger()

		if c.DefaultAccountID == nil {
			logger.Debug().Msg("No default account, skipping budget")
			result.Skipped++
			continue
		}
		if !c.Budget.Amount.IsPositive() {
			logger.Debug().Msg("Budget amount is not positive, skipping")
			result.Skipped++
			continue
		}
		result.Checked++

		usage, err := m.usage(ctx, &c.Budget, *c.DefaultAccountID, now)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to compute budget usage")
			result.Failed++
			continue
		}

		if usage.PercentageUsed.LessThan(m.threshold) {
			continue
		}
		if c.Budget.LastAlertSent != nil && util.SameMonth(*c.Budget.LastAlertSent, now, m.location) {
			logger.Debug().Msg("Alert already sent this month")
			continue
		}

		monthStart, nextMonthStart := util.MonthBounds(now, m.location)
		claimed, err := m.budgetRepo.ClaimAlert(ctx, c.Budget.ID, now, monthStart, nextMonthStart)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to claim budget alert")
			result.Failed++
			continue
		}
		if !claimed {
			logger.Debug().Msg("Budget alert claimed by another sweep")
			continue
		}

		if err := m.sendAlert(ctx, c, usage); err != nil {
			// The claim stays: a failed alert is not retried this month
			logger.Error().Err(err).Str("email", c.UserEmail).Msg("Failed to send budget alert")
			result.Failed++
			continue
		}

		m.publisher.Publish(c.Budget.UserID, websocket.BudgetAlert(usage))
		result.AlertsSent++
		logger.Info().
			Str("percentage_used", usage.PercentageUsed.StringFixed(2)).
			Msg("Sent budget alert")
	}

	m.logger.Info().
		Int("budgets", len(candidates)).
		Int("checked", result.Checked).
		Int("skipped", result.Skipped).
		Int("alerts_sent", result.AlertsSent).
		Int("failed", result.Failed).
		Msg("Completed budget check")
	return result, nil
}

// Usage returns the budget's spend for one account over the alert window
func (m *BudgetAlertMonitor) Usage(ctx context.Context, budget *domain.Budget, accountID uuid.UUID) (*BudgetUsage, error) {
	return m.usage(ctx, budget, accountID, m.now())
}

func (m *BudgetAlertMonitor) usage(ctx context.Context, budget *domain.Budget, accountID uuid.UUID, now time.Time) (*BudgetUsage, error) {
	from, to := util.BudgetWindow(now, m.location)
	expenses, err := m.transactionRepo.SumExpenses(ctx, budget.UserID, accountID, from, to)
	if err != nil {
		return nil, err
	}

	usage := &BudgetUsage{
		BudgetID:       budget.ID,
		Amount:         budget.Amount,
		TotalExpenses:  expenses,
		PercentageUsed: decimal.Zero,
	}
	if budget.Amount.IsPositive() {
		usage.PercentageUsed = expenses.Div(budget.Amount).Mul(hundred)
	}
	return usage, nil
}

func (m *BudgetAlertMonitor) sendAlert(ctx context.Context, c *domain.BudgetAlertCandidate, usage *BudgetUsage) error {
	username := c.UserEmail
	if c.UserName != nil && *c.UserName != "" {
		username = *c.UserName
	}

	html, err := email.RenderBudgetAlert(email.BudgetAlertData{
		Username:       username,
		AccountName:    c.DefaultAccountName,
		PercentageUsed: usage.PercentageUsed,
		BudgetAmount:   usage.Amount,
		TotalExpenses:  usage.TotalExpenses,
	})
	if err != nil {
		return err
	}

	res, err := m.sender.Send(ctx, email.Message{
		To:      c.UserEmail,
		Subject: fmt.Sprintf("Budget Alert for %s", c.DefaultAccountName),
		HTML:    html,
	})
	if err != nil {
		return err
	}
	if res != nil {
		m.logger.Debug().Str("message_id", res.ID).Msg("Budget alert delivered")
	}
	return nil
}

package email

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/shopspring/decimal"
)

// BudgetAlertData is the content of a budget alert email
type BudgetAlertData struct {
	Username       string
	AccountName    string
	PercentageUsed decimal.Decimal
	BudgetAmount   decimal.Decimal
	TotalExpenses  decimal.Decimal
}

// Remaining is what is left of the budget; negative once it is overspent
func (d BudgetAlertData) Remaining() decimal.Decimal {
	return d.BudgetAmount.Sub(d.TotalExpenses)
}

var budgetAlertTemplate = template.Must(template.New("budget-alert").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Budget Alert</title></head>
<body style="background-color:#f6f9fc;font-family:-apple-system,sans-serif">
  <div style="background-color:#ffffff;margin:0 auto;padding:20px;border-radius:5px;box-shadow:0 2px 4px rgba(0,0,0,0.1)">
    <h1 style="color:#1f2937;font-size:32px;font-weight:bold;text-align:center;margin:0 0 20px">Budget Alert</h1>
    <p>Hello {{.Username}},</p>
    <p>You&rsquo;ve used {{.PercentageUsed.StringFixed 2}}% of your monthly budget{{if .AccountName}} for {{.AccountName}}{{end}}.</p>
    <div style="margin:32px 0;padding:20px;background-color:#f9fafb;border-radius:5px">
      <div style="margin-bottom:16px;padding:12px;background-color:#fff;border-radius:4px">
        <p>Budget Amount</p>
        <p style="color:#1f2937;font-size:20px;font-weight:600">${{.BudgetAmount.StringFixed 2}}</p>
      </div>
      <div style="margin-bottom:16px;padding:12px;background-color:#fff;border-radius:4px">
        <p>Spent So Far</p>
        <p style="color:#1f2937;font-size:20px;font-weight:600">${{.TotalExpenses.StringFixed 2}}</p>
      </div>
      <div style="margin-bottom:16px;padding:12px;background-color:#fff;border-radius:4px">
        <p>Remaining</p>
        <p style="color:#1f2937;font-size:20px;font-weight:600">${{.Remaining.StringFixed 2}}</p>
      </div>
    </div>
  </div>
</body>
</html>
`))

// RenderBudgetAlert renders the budget alert HTML body
func RenderBudgetAlert(data BudgetAlertData) (string, error) {
	var buf bytes.Buffer
	if err := budgetAlertTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render budget alert: %w", err)
	}
	return buf.String(), nil
}

/**
 * @description
 * This file builds the prompt text sent to the LLM providers. Three prompts
 * exist: profile extraction (builds the structured finance memory), account
 * analysis (a one-shot structured read of the raw banking data), and
 * suggestions (personalized advice from the stored memory).
 *
 * Prompts always demand JSON-only output; the parsing layer still tolerates a
 * markdown code fence around the payload because smaller models add one anyway.
 */

package app

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wo-aiml-user/finance-agent/internal/schema"
)

const analysisSystemMessage = "You are a financial data analyst. Always respond with valid JSON only, no additional text or explanations."

const profileExtractionTemplate = `You are a financial data analyst. Analyze the user's banking data (transactions, balances, accounts, loans, investments) and fill a structured finance profile.

Your objectives:
- Derive profile values directly from the provided data; infer only when you have high confidence.
- Perform key calculations where the data supports them:
  * Monthly income and expense averages from transaction history
  * Net monthly cash flow (income - expenses)
  * Savings rate as a percentage of income
  * Total debt and monthly debt payments
- Use ISO 8601 for any dates. Use null for unknown or uncertain values.
- Output valid JSON only, with the following top-level schema:

{
  "FinanceProfile": { ...the profile fields listed below... },
  "additional_insights": { ...any notable observations that do not fit a profile field... },
  "profile_summary": "one concise paragraph describing the user's financial situation"
}

FinanceProfile fields (use exactly these keys, null when unknown):
{profile_schema}

User Banking Data:
{input_json}

Return ONLY a JSON object that conforms to the schema above.
`

const accountAnalysisTemplate = `You are a financial data analyst. Analyze the user's banking data (transactions, balances, accounts, loans, investments) and produce a concise, structured JSON analysis.

Your objectives:
- Derive insights directly from the provided data; infer only when you have high confidence.
- Perform key calculations:
  * Monthly income and expense averages from transaction history
  * Net monthly cash flow (income - expenses)
  * Savings rate as a percentage of income
  * Debt-to-income (DTI) ratio
- Use ISO 8601 for any dates. Use null for unknown or uncertain values.
- Output valid JSON only, with the following top-level schema.

Expected JSON schema:
{
  "account_overview": {
    "total_balance": number,
    "monthly_income_avg": number,
    "monthly_expense_avg": number,
    "net_cash_flow_monthly": number,
    "savings_rate_pct": number
  },
  "spending_analysis": {
    "by_category": [{ "category": string, "monthly_avg": number, "share_pct": number }],
    "top_merchants": [{ "merchant": string, "amount": number, "count": number }],
    "recurring_payments": [{ "name": string, "amount": number, "frequency": string, "next_expected_date": string|null }]
  },
  "income_analysis": {
    "sources": [{ "name": string, "monthly_avg": number, "regularity_score": number }],
    "volatility_pct": number,
    "trend": "increasing"|"stable"|"decreasing"
  },
  "debt_analysis": {
    "total_debt": number,
    "dti_ratio_pct": number,
    "accounts": [{ "type": string, "balance": number, "apr_pct": number|null, "min_payment": number|null, "status": string }]
  },
  "risk_flags": [string],
  "recommendations": [string],
  "summary": string
}

User Banking Data:
{input_json}

Return ONLY a JSON object that conforms to the schema above.
`

const suggestionsTemplate = `You are a professional financial advisor who provides personalized recommendations based on a user's long-term financial profile and their current situation.

Your task:
- Use the given data to create a personalized recommendation as if you were speaking directly to the user.
- Do not repeat back all the facts they already know; focus on what they should do next to improve their financial health.
- Make the advice specific to them based on their profile, debt levels, savings, income, location, and goals.
- Use a supportive, encouraging, and human tone that makes them feel understood and motivated.
- Focus on clear, practical steps they can take.
- Avoid sounding robotic or overly formal; keep it conversational.
- Output a JSON object with two keys:
  - "short_msg": A concise, notification-like message summarizing the core advice.
  - "suggestion": The actionable recommendation text, one clear step or recommendation per line.

Input:
Finance memory:
{finance_memory}

Output:
`

// buildProfileExtractionPrompt injects the schema description and the user's
// raw banking data into the extraction template.
func buildProfileExtractionPrompt(userData map[string]any) string {
	var schemaLines strings.Builder
	for _, f := range schema.FieldDescriptions() {
		fmt.Fprintf(&schemaLines, "- %s: %s\n", f.Name, f.Type)
	}

	prompt := strings.Replace(profileExtractionTemplate, "{profile_schema}", schemaLines.String(), 1)
	return strings.Replace(prompt, "{input_json}", marshalIndent(userData), 1)
}

// buildAccountAnalysisPrompt injects the user's raw banking data into the
// account-analysis template.
func buildAccountAnalysisPrompt(userData map[string]any) string {
	return strings.Replace(accountAnalysisTemplate, "{input_json}", marshalIndent(userData), 1)
}

// buildSuggestionsPrompt injects the compact, null-stripped finance memory
// into the suggestions template.
func buildSuggestionsPrompt(financeMemory map[string]any) string {
	return strings.Replace(suggestionsTemplate, "{finance_memory}", marshalIndent(financeMemory), 1)
}

func marshalIndent(v any) string {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(out)
}

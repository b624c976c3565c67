/**
 * @description
 * This file defines the FinanceProfile domain model: the full set of recognized
 * financial-profile fields extracted by the analysis provider. Every field is
 * independently optional, so all fields are pointer-typed (or slices) and an
 * absent field is nil.
 *
 * @notes
 * - Currency amounts use shopspring/decimal to keep arbitrary precision while the
 *   value moves through the service. Decimals are converted to float64 only at the
 *   storage boundary (see internal/schema.StorageMap).
 * - JSON tags intentionally omit `omitempty`: a stored profile carries explicit
 *   nulls for unknown fields, and the suggestions flow strips them later.
 */

package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FinanceProfile is the structured financial profile of a single user.
// Field names mirror the keys the analysis provider is prompted to emit.
type FinanceProfile struct {
	// Basic info
	UserAgeYears            *int    `json:"user_age_years" mapstructure:"user_age_years"`
	UserOccupationJob       *string `json:"user_occupation_job" mapstructure:"user_occupation_job"`
	UserLocationCityCountry *string `json:"user_location_city_country" mapstructure:"user_location_city_country"`
	UserHasSpousePartner    *bool   `json:"user_has_spouse_partner" mapstructure:"user_has_spouse_partner"`
	UserNumberOfChildren    *int    `json:"user_number_of_children" mapstructure:"user_number_of_children"`

	// Income
	IncomeTotalYearlyAmount *decimal.Decimal `json:"income_total_yearly_amount" mapstructure:"income_total_yearly_amount"`
	IncomeMonthlyTakeHome   *decimal.Decimal `json:"income_monthly_take_home" mapstructure:"income_monthly_take_home"`
	IncomeFromSalary        *decimal.Decimal `json:"income_from_salary" mapstructure:"income_from_salary"`
	IncomeFromBusiness      *decimal.Decimal `json:"income_from_business" mapstructure:"income_from_business"`
	IncomeFromInvestments   *decimal.Decimal `json:"income_from_investments" mapstructure:"income_from_investments"`
	IncomeFromRental        *decimal.Decimal `json:"income_from_rental" mapstructure:"income_from_rental"`
	IncomeOtherSources      *decimal.Decimal `json:"income_other_sources" mapstructure:"income_other_sources"`

	// Expenses
	ExpenseTotalMonthly         *decimal.Decimal `json:"expense_total_monthly" mapstructure:"expense_total_monthly"`
	ExpenseHousingRentMortgage  *decimal.Decimal `json:"expense_housing_rent_mortgage" mapstructure:"expense_housing_rent_mortgage"`
	ExpenseFoodGroceriesDining  *decimal.Decimal `json:"expense_food_groceries_dining" mapstructure:"expense_food_groceries_dining"`
	ExpenseTransportationCarGas *decimal.Decimal `json:"expense_transportation_car_gas" mapstructure:"expense_transportation_car_gas"`
	ExpenseUtilitiesBills       *decimal.Decimal `json:"expense_utilities_bills" mapstructure:"expense_utilities_bills"`
	ExpenseEntertainmentHobbies *decimal.Decimal `json:"expense_entertainment_hobbies" mapstructure:"expense_entertainment_hobbies"`
	ExpenseOtherCategories      *string          `json:"expense_other_categories" mapstructure:"expense_other_categories"`

	// Savings
	SavingsMonthlyAmount       *decimal.Decimal `json:"savings_monthly_amount" mapstructure:"savings_monthly_amount"`
	SavingsEmergencyFundTotal  *decimal.Decimal `json:"savings_emergency_fund_total" mapstructure:"savings_emergency_fund_total"`
	SavingsPercentageOfIncome  *float64         `json:"savings_percentage_of_income" mapstructure:"savings_percentage_of_income"`

	// Goals
	GoalBuyHouseAmountNeeded   *decimal.Decimal `json:"goal_buy_house_amount_needed" mapstructure:"goal_buy_house_amount_needed"`
	GoalBuyHouseTimelineYears  *int             `json:"goal_buy_house_timeline_years" mapstructure:"goal_buy_house_timeline_years"`
	GoalRetirementTargetAmount *decimal.Decimal `json:"goal_retirement_target_amount" mapstructure:"goal_retirement_target_amount"`
	GoalRetirementAgeTarget    *int             `json:"goal_retirement_age_target" mapstructure:"goal_retirement_age_target"`
	GoalChildrenEducationAmount *decimal.Decimal `json:"goal_children_education_amount" mapstructure:"goal_children_education_amount"`
	GoalVacationTravelBudget   *decimal.Decimal `json:"goal_vacation_travel_budget" mapstructure:"goal_vacation_travel_budget"`
	GoalOtherMajorPurchases    *string          `json:"goal_other_major_purchases" mapstructure:"goal_other_major_purchases"`
	GoalMostImportantPriority  *string          `json:"goal_most_important_priority" mapstructure:"goal_most_important_priority"`

	// Current investments
	InvestmentTotalPortfolioValue *decimal.Decimal `json:"investment_total_portfolio_value" mapstructure:"investment_total_portfolio_value"`
	InvestmentStocksValue         *decimal.Decimal `json:"investment_stocks_value" mapstructure:"investment_stocks_value"`
	InvestmentBondsValue          *decimal.Decimal `json:"investment_bonds_value" mapstructure:"investment_bonds_value"`
	InvestmentMutualFundsValue    *decimal.Decimal `json:"investment_mutual_funds_value" mapstructure:"investment_mutual_funds_value"`
	InvestmentETFValue            *decimal.Decimal `json:"investment_etf_value" mapstructure:"investment_etf_value"`
	InvestmentCryptoValue         *decimal.Decimal `json:"investment_crypto_value" mapstructure:"investment_crypto_value"`
	InvestmentRealEstateValue     *decimal.Decimal `json:"investment_real_estate_value" mapstructure:"investment_real_estate_value"`
	InvestmentGoldPreciousMetals  *decimal.Decimal `json:"investment_gold_precious_metals" mapstructure:"investment_gold_precious_metals"`
	InvestmentFixedDepositsValue  *decimal.Decimal `json:"investment_fixed_deposits_value" mapstructure:"investment_fixed_deposits_value"`
	InvestmentRetirement401kIRA   *decimal.Decimal `json:"investment_retirement_401k_ira" mapstructure:"investment_retirement_401k_ira"`

	// Debt
	DebtTotalAmountOwed      *decimal.Decimal `json:"debt_total_amount_owed" mapstructure:"debt_total_amount_owed"`
	DebtHomeLoanMortgage     *decimal.Decimal `json:"debt_home_loan_mortgage" mapstructure:"debt_home_loan_mortgage"`
	DebtCarLoanAmount        *decimal.Decimal `json:"debt_car_loan_amount" mapstructure:"debt_car_loan_amount"`
	DebtStudentLoanAmount    *decimal.Decimal `json:"debt_student_loan_amount" mapstructure:"debt_student_loan_amount"`
	DebtCreditCardBalance    *decimal.Decimal `json:"debt_credit_card_balance" mapstructure:"debt_credit_card_balance"`
	DebtPersonalLoanAmount   *decimal.Decimal `json:"debt_personal_loan_amount" mapstructure:"debt_personal_loan_amount"`
	DebtMonthlyTotalPayments *decimal.Decimal `json:"debt_monthly_total_payments" mapstructure:"debt_monthly_total_payments"`

	// Risk profile
	RiskToleranceLevel           *string          `json:"risk_tolerance_level" mapstructure:"risk_tolerance_level"` // "low", "medium", "high"
	RiskCanAffordToLoseAmount    *decimal.Decimal `json:"risk_can_afford_to_lose_amount" mapstructure:"risk_can_afford_to_lose_amount"`
	RiskInvestmentExperienceYears *int            `json:"risk_investment_experience_years" mapstructure:"risk_investment_experience_years"`
	RiskReactionToMarketDrop     *string          `json:"risk_reaction_to_market_drop" mapstructure:"risk_reaction_to_market_drop"` // "sell", "hold", "buy more"

	// Investment preferences
	PreferStocksOverBonds           *bool    `json:"prefer_stocks_over_bonds" mapstructure:"prefer_stocks_over_bonds"`
	PreferDomesticOverInternational *bool    `json:"prefer_domestic_over_international" mapstructure:"prefer_domestic_over_international"`
	PreferGrowthOverDividend        *bool    `json:"prefer_growth_over_dividend" mapstructure:"prefer_growth_over_dividend"`
	PreferIndividualStocksOverFunds *bool    `json:"prefer_individual_stocks_over_funds" mapstructure:"prefer_individual_stocks_over_funds"`
	PreferActiveOverPassive         *bool    `json:"prefer_active_over_passive" mapstructure:"prefer_active_over_passive"`
	InterestedInCrypto              *bool    `json:"interested_in_crypto" mapstructure:"interested_in_crypto"`
	InterestedInRealEstate          *bool    `json:"interested_in_real_estate" mapstructure:"interested_in_real_estate"`
	AvoidSpecificSectors            []string `json:"avoid_specific_sectors" mapstructure:"avoid_specific_sectors"`

	// Tax situation
	TaxBracketPercentage *float64 `json:"tax_bracket_percentage" mapstructure:"tax_bracket_percentage"`
	TaxFilingStatus      *string  `json:"tax_filing_status" mapstructure:"tax_filing_status"` // "single", "married", etc.
	TaxStateResidence    *string  `json:"tax_state_residence" mapstructure:"tax_state_residence"`
	TaxDeductionsClaimed []string `json:"tax_deductions_claimed" mapstructure:"tax_deductions_claimed"`

	// Insurance
	InsuranceHasLife        *bool `json:"insurance_has_life" mapstructure:"insurance_has_life"`
	InsuranceHasHealth      *bool `json:"insurance_has_health" mapstructure:"insurance_has_health"`
	InsuranceHasDisability  *bool `json:"insurance_has_disability" mapstructure:"insurance_has_disability"`
	InsuranceHasHomeRenters *bool `json:"insurance_has_home_renters" mapstructure:"insurance_has_home_renters"`
	InsuranceHasAuto        *bool `json:"insurance_has_auto" mapstructure:"insurance_has_auto"`

	// Financial knowledge
	KnowledgeUnderstandsStocks      *bool   `json:"knowledge_understands_stocks" mapstructure:"knowledge_understands_stocks"`
	KnowledgeUnderstandsBonds       *bool   `json:"knowledge_understands_bonds" mapstructure:"knowledge_understands_bonds"`
	KnowledgeUnderstandsMutualFunds *bool   `json:"knowledge_understands_mutual_funds" mapstructure:"knowledge_understands_mutual_funds"`
	KnowledgeNeedsBasicEducation    *bool   `json:"knowledge_needs_basic_education" mapstructure:"knowledge_needs_basic_education"`
	KnowledgeConfidentLevel         *string `json:"knowledge_confident_level" mapstructure:"knowledge_confident_level"` // "beginner", "intermediate", "advanced"

	// Past behavior
	HistoryBestInvestmentMade  *string `json:"history_best_investment_made" mapstructure:"history_best_investment_made"`
	HistoryWorstInvestmentMade *string `json:"history_worst_investment_made" mapstructure:"history_worst_investment_made"`
	HistoryLearnedLessons      *string `json:"history_learned_lessons" mapstructure:"history_learned_lessons"`
	HistoryYearsInvesting      *int    `json:"history_years_investing" mapstructure:"history_years_investing"`

	// Future plans
	PlansMajorPurchaseNextYear *string `json:"plans_major_purchase_next_year" mapstructure:"plans_major_purchase_next_year"`
	PlansCareerChangeExpected  *bool   `json:"plans_career_change_expected" mapstructure:"plans_career_change_expected"`
	PlansExpectingInheritance  *bool   `json:"plans_expecting_inheritance" mapstructure:"plans_expecting_inheritance"`
	PlansStartingBusiness      *bool   `json:"plans_starting_business" mapstructure:"plans_starting_business"`

	// Advice preferences
	PrefersSimpleExplanations  *bool `json:"prefers_simple_explanations" mapstructure:"prefers_simple_explanations"`
	PrefersDetailedAnalysis    *bool `json:"prefers_detailed_analysis" mapstructure:"prefers_detailed_analysis"`
	PrefersConservativeAdvice  *bool `json:"prefers_conservative_advice" mapstructure:"prefers_conservative_advice"`
	PrefersAggressiveStrategies *bool `json:"prefers_aggressive_strategies" mapstructure:"prefers_aggressive_strategies"`

	// Tracking
	ProfileLastUpdatedDate    *time.Time `json:"profile_last_updated_date" mapstructure:"profile_last_updated_date"`
	PortfolioLastReviewedDate *time.Time `json:"portfolio_last_reviewed_date" mapstructure:"portfolio_last_reviewed_date"`
	GoalsLastDiscussedDate    *time.Time `json:"goals_last_discussed_date" mapstructure:"goals_last_discussed_date"`

	// Open notes
	NotesSpecialCircumstances   *string  `json:"notes_special_circumstances" mapstructure:"notes_special_circumstances"`
	NotesSpecificQuestionsAsked []string `json:"notes_specific_questions_asked" mapstructure:"notes_specific_questions_asked"`
	NotesAdviceGivenPreviously  []string `json:"notes_advice_given_previously" mapstructure:"notes_advice_given_previously"`
}

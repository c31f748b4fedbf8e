// Package report assembles tips, the action plan and the markdown report in
// English or Spanish.
package report

import (
	"fmt"

	"homebuyer-lead-engine/internal/models"
)

// MessageKey identifies one buyer-facing string.
type MessageKey int

const (
	KeyReportTitle MessageKey = iota
	KeySummaryHeading
	KeySummaryBody
	KeyNumbersHeading
	KeyLabelEstimatedPrice
	KeyLabelMaxAffordable
	KeyLabelMonthlyPayment
	KeyLabelMonthlyIncome
	KeyLabelDTI
	KeyLabelMaxHousing
	KeyLabelDownPayment
	KeyLabelRecommendedDown
	KeyValueDTIUndefined
	KeyProgramsHeading
	KeyLabelRecommendedProgram
	KeyLabelEligible
	KeyLabelNotEligible
	KeySpecialDocumentation
	KeyProfileHeading
	KeyLabelLeadType
	KeyLabelStability
	KeyLabelCreditTier
	KeyLabelStrengths
	KeyLabelRisks
	KeyLabelConsiderations
	KeyActionPlanHeading
	KeyTipsHeading
	KeyAreaHeading
	KeyLabelPopulation
	KeyLabelMedianIncome
	KeyLabelMedianHomeValue
	KeyLabelMedianAge
	KeyLabelOwnerOccupied
	KeyAreaBelowMedian
	KeyAreaAboveMedian
	KeyAreaSource
	KeyDisclaimer
	KeyYourArea

	KeyActionReviewCredit
	KeyActionGatherDocuments
	KeyActionPreapproval
	KeyActionSetBudget
	KeyActionConnectAgent
	KeyActionActQuickly
	KeyActionImproveProfile

	KeyTipITINLender
	KeyTipVABenefits
	KeyTipFirstTimeAssistance
	KeyTipBankStatements
	KeyTipRetirementIncome
	KeyTipInvestorReserves
	KeyTipImproveCredit
	KeyTipVerifyIncome
	KeyTipReduceDebt
	KeyTipSaveDownPayment
	KeyTipShopLenders

	KeyRiskHighDTI
	KeyRiskCreditImprovement
	KeyRiskIncomeUnverified
	KeyStrengthExcellentCredit
	KeyStrengthStrongDTI
	KeyStrengthDownPayment

	KeyConsiderITINLender
	KeyConsiderITINDocuments
	KeyConsiderVABenefits
	KeyConsiderVACertificate
	KeyConsiderJumbo
	KeyConsiderRetirementIncome
	KeyConsiderSelfEmployedDocs
	KeyConsiderMixedIncome
	KeyConsiderFirstTimeAid
	KeyConsiderInvestorReserves
	KeyConsiderRelocating
	KeyConsiderDownsizing
	KeyConsiderUpsizing

	KeyReasonRequiresSSN
	KeyReasonInvestmentProperty
	KeyReasonNotVeteran
	KeyNotePMI
	KeyNoteFHACreditFloor
	KeyNoteITINDocuments
	KeyNoteBankStatements

	KeyTierExcellent
	KeyTierGood
	KeyTierFair
	KeyTierPoor
	KeyTierUnknown
	KeyStabilityExcellent
	KeyStabilityGood
	KeyStabilityModerate
	KeyStabilityRequiresReview

	numMessageKeys
)

// Keys returns every message key.
func Keys() []MessageKey {
	keys := make([]MessageKey, 0, numMessageKeys)
	for k := MessageKey(0); k < numMessageKeys; k++ {
		keys = append(keys, k)
	}
	return keys
}

// Catalog maps each locale to its strings. Entries with verbs are fmt templates.
type Catalog map[models.Locale]map[MessageKey]string

// Text renders key in locale, falling back to English.
func (c Catalog) Text(locale models.Locale, key MessageKey, args ...any) string {
	msg, ok := c[locale][key]
	if !ok {
		msg = c[models.LocaleEnglish][key]
	}
	if len(args) == 0 {
		return msg
	}
	return fmt.Sprintf(msg, args...)
}

// Missing returns the keys locale lacks.
func (c Catalog) Missing(locale models.Locale) []MessageKey {
	var missing []MessageKey
	for _, k := range Keys() {
		if c[locale][k] == "" {
			missing = append(missing, k)
		}
	}
	return missing
}

// Messages is the built-in catalog.
var Messages = Catalog{
	models.LocaleEnglish: english,
	models.LocaleSpanish: spanish,
}

var english = map[MessageKey]string{
	KeyReportTitle:             "# Your Home Buying Report",
	KeySummaryHeading:          "## Summary",
	KeySummaryBody:             "With an annual income of %s, a home around %s fits your plan, with an estimated monthly payment of %s.",
	KeyNumbersHeading:          "## Your Numbers",
	KeyLabelEstimatedPrice:     "Estimated price",
	KeyLabelMaxAffordable:      "Maximum affordable price",
	KeyLabelMonthlyPayment:     "Estimated monthly payment",
	KeyLabelMonthlyIncome:      "Monthly income",
	KeyLabelDTI:                "Debt-to-income ratio",
	KeyLabelMaxHousing:         "Maximum housing payment (28% of income)",
	KeyLabelDownPayment:        "Your down payment",
	KeyLabelRecommendedDown:    "Recommended down payment (20%)",
	KeyValueDTIUndefined:       "undefined (no income reported)",
	KeyProgramsHeading:         "## Loan Programs",
	KeyLabelRecommendedProgram: "Recommended",
	KeyLabelEligible:           "Eligible",
	KeyLabelNotEligible:        "Not eligible",
	KeySpecialDocumentation:    "Special income documentation will be required.",
	KeyProfileHeading:          "## Your Buyer Profile",
	KeyLabelLeadType:           "Buyer type",
	KeyLabelStability:          "Employment stability",
	KeyLabelCreditTier:         "Credit tier",
	KeyLabelStrengths:          "Strengths",
	KeyLabelRisks:              "Areas to watch",
	KeyLabelConsiderations:     "Special considerations",
	KeyActionPlanHeading:       "## Action Plan",
	KeyTipsHeading:             "## Tips",
	KeyAreaHeading:             "## About %s",
	KeyLabelPopulation:         "Population",
	KeyLabelMedianIncome:       "Median household income",
	KeyLabelMedianHomeValue:    "Median home value",
	KeyLabelMedianAge:          "Median age",
	KeyLabelOwnerOccupied:      "Owner-occupied homes",
	KeyAreaBelowMedian:         "Your estimated price is below the area median home value of %s.",
	KeyAreaAboveMedian:         "Your estimated price is above the area median home value of %s.",
	KeyAreaSource:              "Source: %s",
	KeyDisclaimer:              "_This report is an estimate, not a loan offer. A licensed loan officer can confirm exact figures._",
	KeyYourArea:                "your area",

	KeyActionReviewCredit:    "Review your credit report and dispute any errors.",
	KeyActionGatherDocuments: "Gather pay stubs, tax returns and two months of bank statements.",
	KeyActionPreapproval:     "Get pre-approved for a %s loan.",
	KeyActionSetBudget:       "Keep your home search at or below %s.",
	KeyActionConnectAgent:    "Connect with a local agent who knows %s.",
	KeyActionActQuickly:      "Act quickly: start your pre-approval this week so you can make offers right away.",
	KeyActionImproveProfile:  "Take time to improve your profile: pay down debt and build your credit before applying.",

	KeyTipITINLender:          "Work with a lender that offers ITIN portfolio loans; most banks do not.",
	KeyTipVABenefits:          "Use your VA benefit: no down payment and no mortgage insurance.",
	KeyTipFirstTimeAssistance: "Ask about first-time buyer down payment assistance in your state.",
	KeyTipBankStatements:      "Keep 12 to 24 months of business bank statements ready to document income.",
	KeyTipRetirementIncome:    "Retirement accounts and Social Security can count as qualifying income.",
	KeyTipInvestorReserves:    "Plan for 20-25% down and several months of reserves on an investment property.",
	KeyTipImproveCredit:       "Paying balances below 30% of your limits can raise your score within a few months.",
	KeyTipVerifyIncome:        "Report all of your income so lenders can calculate your debt-to-income ratio.",
	KeyTipReduceDebt:          "Paying down monthly debts will lower your debt-to-income ratio and raise your budget.",
	KeyTipSaveDownPayment:     "Saving 20% down avoids private mortgage insurance (PMI) on conventional loans.",
	KeyTipShopLenders:         "Compare offers from at least three lenders; rates vary more than you think.",

	KeyRiskHighDTI:             "High debt-to-income ratio",
	KeyRiskCreditImprovement:   "Credit needs improvement",
	KeyRiskIncomeUnverified:    "Income could not be verified",
	KeyStrengthExcellentCredit: "Excellent credit",
	KeyStrengthStrongDTI:       "Strong debt-to-income ratio",
	KeyStrengthDownPayment:     "Strong down payment",

	KeyConsiderITINLender:       "Needs an ITIN portfolio lender",
	KeyConsiderITINDocuments:    "Expect 15-20% down and two years of tax returns",
	KeyConsiderVABenefits:       "VA benefits: no down payment and no PMI",
	KeyConsiderVACertificate:    "Certificate of Eligibility required",
	KeyConsiderJumbo:            "Candidate for jumbo financing",
	KeyConsiderRetirementIncome: "Qualify on retirement, pension and Social Security income",
	KeyConsiderSelfEmployedDocs: "Needs two years of tax returns or 12-24 months of bank statements",
	KeyConsiderMixedIncome:      "Each income source must be documented separately",
	KeyConsiderFirstTimeAid:     "May qualify for first-time buyer assistance",
	KeyConsiderInvestorReserves: "Investment property pricing and reserves apply",
	KeyConsiderRelocating:       "Relocating: may need remote showings and closing",
	KeyConsiderDownsizing:       "Downsizing: equity from current home can fund down payment",
	KeyConsiderUpsizing:         "Upsizing: may need to sell current home first",

	KeyReasonRequiresSSN:        "requires a Social Security Number",
	KeyReasonInvestmentProperty: "not allowed for investment properties",
	KeyReasonNotVeteran:         "requires military service",
	KeyNotePMI:                  "Conventional loans with less than 20% down require private mortgage insurance (PMI).",
	KeyNoteFHACreditFloor:       "FHA generally requires a 580+ credit score for the 3.5% minimum down payment.",
	KeyNoteITINDocuments:        "ITIN loans require an ITIN letter, two years of tax returns, and a larger down payment.",
	KeyNoteBankStatements:       "Bank statement loans qualify income from 12 to 24 months of deposits instead of tax returns.",

	KeyTierExcellent:           "Excellent",
	KeyTierGood:                "Good",
	KeyTierFair:                "Fair",
	KeyTierPoor:                "Poor",
	KeyTierUnknown:             "Not provided",
	KeyStabilityExcellent:      "Excellent",
	KeyStabilityGood:           "Good",
	KeyStabilityModerate:       "Moderate",
	KeyStabilityRequiresReview: "Requires review",
}

var spanish = map[MessageKey]string{
	KeyReportTitle:             "# Tu Informe de Compra de Vivienda",
	KeySummaryHeading:          "## Resumen",
	KeySummaryBody:             "Con un ingreso anual de %s, una vivienda de alrededor de %s se ajusta a tu plan, con un pago mensual estimado de %s.",
	KeyNumbersHeading:          "## Tus Números",
	KeyLabelEstimatedPrice:     "Precio estimado",
	KeyLabelMaxAffordable:      "Precio máximo asequible",
	KeyLabelMonthlyPayment:     "Pago mensual estimado",
	KeyLabelMonthlyIncome:      "Ingreso mensual",
	KeyLabelDTI:                "Relación deuda-ingreso",
	KeyLabelMaxHousing:         "Pago máximo de vivienda (28% del ingreso)",
	KeyLabelDownPayment:        "Tu pago inicial",
	KeyLabelRecommendedDown:    "Pago inicial recomendado (20%)",
	KeyValueDTIUndefined:       "no definido (sin ingresos reportados)",
	KeyProgramsHeading:         "## Programas de Préstamo",
	KeyLabelRecommendedProgram: "Recomendado",
	KeyLabelEligible:           "Elegible",
	KeyLabelNotEligible:        "No elegible",
	KeySpecialDocumentation:    "Se requerirá documentación especial de ingresos.",
	KeyProfileHeading:          "## Tu Perfil de Comprador",
	KeyLabelLeadType:           "Tipo de comprador",
	KeyLabelStability:          "Estabilidad laboral",
	KeyLabelCreditTier:         "Nivel de crédito",
	KeyLabelStrengths:          "Fortalezas",
	KeyLabelRisks:              "Áreas de atención",
	KeyLabelConsiderations:     "Consideraciones especiales",
	KeyActionPlanHeading:       "## Plan de Acción",
	KeyTipsHeading:             "## Consejos",
	KeyAreaHeading:             "## Sobre %s",
	KeyLabelPopulation:         "Población",
	KeyLabelMedianIncome:       "Ingreso familiar medio",
	KeyLabelMedianHomeValue:    "Valor medio de vivienda",
	KeyLabelMedianAge:          "Edad media",
	KeyLabelOwnerOccupied:      "Viviendas ocupadas por sus dueños",
	KeyAreaBelowMedian:         "Tu precio estimado está por debajo del valor medio de vivienda del área, %s.",
	KeyAreaAboveMedian:         "Tu precio estimado está por encima del valor medio de vivienda del área, %s.",
	KeyAreaSource:              "Fuente: %s",
	KeyDisclaimer:              "_Este informe es una estimación, no una oferta de préstamo. Un oficial de préstamos con licencia puede confirmar las cifras exactas._",
	KeyYourArea:                "tu área",

	KeyActionReviewCredit:    "Revisa tu reporte de crédito y disputa cualquier error.",
	KeyActionGatherDocuments: "Reúne talones de pago, declaraciones de impuestos y dos meses de estados de cuenta bancarios.",
	KeyActionPreapproval:     "Obtén una preaprobación para un préstamo %s.",
	KeyActionSetBudget:       "Mantén tu búsqueda de vivienda en %s o menos.",
	KeyActionConnectAgent:    "Conéctate con un agente local que conozca %s.",
	KeyActionActQuickly:      "Actúa rápido: comienza tu preaprobación esta semana para poder hacer ofertas de inmediato.",
	KeyActionImproveProfile:  "Tómate el tiempo para mejorar tu perfil: reduce tus deudas y fortalece tu crédito antes de solicitar.",

	KeyTipITINLender:          "Trabaja con un prestamista que ofrezca préstamos ITIN de cartera; la mayoría de los bancos no los ofrecen.",
	KeyTipVABenefits:          "Usa tu beneficio VA: sin pago inicial y sin seguro hipotecario.",
	KeyTipFirstTimeAssistance: "Pregunta por la asistencia para el pago inicial para compradores por primera vez en tu estado.",
	KeyTipBankStatements:      "Ten listos de 12 a 24 meses de estados de cuenta bancarios del negocio para documentar tus ingresos.",
	KeyTipRetirementIncome:    "Las cuentas de jubilación y el Seguro Social pueden contar como ingreso calificado.",
	KeyTipInvestorReserves:    "Planea un pago inicial de 20-25% y varios meses de reservas para una propiedad de inversión.",
	KeyTipImproveCredit:       "Mantener tus saldos por debajo del 30% de tus límites puede subir tu puntaje en pocos meses.",
	KeyTipVerifyIncome:        "Reporta todos tus ingresos para que los prestamistas puedan calcular tu relación deuda-ingreso.",
	KeyTipReduceDebt:          "Pagar tus deudas mensuales reducirá tu relación deuda-ingreso y aumentará tu presupuesto.",
	KeyTipSaveDownPayment:     "Ahorrar un 20% de pago inicial evita el seguro hipotecario privado (PMI) en préstamos convencionales.",
	KeyTipShopLenders:         "Compara ofertas de al menos tres prestamistas; las tasas varían más de lo que crees.",

	KeyRiskHighDTI:             "Relación deuda-ingreso alta",
	KeyRiskCreditImprovement:   "El crédito necesita mejorar",
	KeyRiskIncomeUnverified:    "No se pudo verificar el ingreso",
	KeyStrengthExcellentCredit: "Crédito excelente",
	KeyStrengthStrongDTI:       "Buena relación deuda-ingreso",
	KeyStrengthDownPayment:     "Pago inicial sólido",

	KeyConsiderITINLender:       "Necesita un prestamista de cartera ITIN",
	KeyConsiderITINDocuments:    "Espera 15-20% de pago inicial y dos años de declaraciones de impuestos",
	KeyConsiderVABenefits:       "Beneficios VA: sin pago inicial y sin PMI",
	KeyConsiderVACertificate:    "Se requiere el Certificado de Elegibilidad",
	KeyConsiderJumbo:            "Candidato para financiamiento jumbo",
	KeyConsiderRetirementIncome: "Califica con ingresos de jubilación, pensión y Seguro Social",
	KeyConsiderSelfEmployedDocs: "Necesita dos años de declaraciones de impuestos o 12-24 meses de estados de cuenta",
	KeyConsiderMixedIncome:      "Cada fuente de ingreso debe documentarse por separado",
	KeyConsiderFirstTimeAid:     "Puede calificar para asistencia a compradores por primera vez",
	KeyConsiderInvestorReserves: "Aplican precios y reservas para propiedades de inversión",
	KeyConsiderRelocating:       "Reubicación: puede necesitar visitas y cierre a distancia",
	KeyConsiderDownsizing:       "Reducción: el capital de la vivienda actual puede financiar el pago inicial",
	KeyConsiderUpsizing:         "Ampliación: puede necesitar vender la vivienda actual primero",

	KeyReasonRequiresSSN:        "requiere Número de Seguro Social",
	KeyReasonInvestmentProperty: "no permitido para propiedades de inversión",
	KeyReasonNotVeteran:         "requiere servicio militar",
	KeyNotePMI:                  "Los préstamos convencionales con menos de 20% de pago inicial requieren seguro hipotecario privado (PMI).",
	KeyNoteFHACreditFloor:       "FHA generalmente requiere un puntaje de 580+ para el pago inicial mínimo de 3.5%.",
	KeyNoteITINDocuments:        "Los préstamos ITIN requieren la carta ITIN, dos años de declaraciones de impuestos y un pago inicial mayor.",
	KeyNoteBankStatements:       "Los préstamos con estados de cuenta califican el ingreso con 12 a 24 meses de depósitos en lugar de declaraciones de impuestos.",

	KeyTierExcellent:           "Excelente",
	KeyTierGood:                "Bueno",
	KeyTierFair:                "Regular",
	KeyTierPoor:                "Bajo",
	KeyTierUnknown:             "No indicado",
	KeyStabilityExcellent:      "Excelente",
	KeyStabilityGood:           "Buena",
	KeyStabilityModerate:       "Moderada",
	KeyStabilityRequiresReview: "Requiere revisión",
}

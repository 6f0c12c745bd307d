// Package catalog - VV RVG catalog (Vergütungsverzeichnis, Anlage 1 zum RVG)
// This is the source of truth for supported fee positions.
package catalog

import (
	"github.com/shopspring/decimal"

	"rvg-calc/core/pricing"
	"rvg-calc/core/types"
)

const (
	CategoryGeneral     = "Allgemeine Gebühren"
	CategoryOutOfCourt  = "Außergerichtliche Tätigkeiten"
	CategoryLegalAdvice = "Beratungshilfe"
	CategoryCivil       = "Bürgerliche Rechtsstreitigkeiten"
	CategoryAppeal      = "Berufung, Revision"
	CategoryEnforcement = "Mahnverfahren, Zwangsvollstreckung"
	CategoryCriminal    = "Strafsachen"
	CategoryExpenses    = "Auslagen"
)

// RegisterVV populates the catalog with all supported VV RVG positions
func RegisterVV(c *Catalog) {
	d := types.MustDecimal
	p := types.DecimalPtr

	// ============================================
	// TEIL 1 - ALLGEMEINE GEBÜHREN
	// ============================================

	c.Register(PositionDefinition{Code: "1000", Name: "Einigungsgebühr", Category: CategoryGeneral, Family: types.FamilyAdValorem, DefaultRate: d("1.5"), Citation: "Nr. 1000 VV RVG"})
	c.Register(PositionDefinition{Code: "1003", Name: "Einigungsgebühr, gerichtliches Verfahren anhängig", Category: CategoryGeneral, Family: types.FamilyAdValorem, DefaultRate: d("1.0"), Citation: "Nr. 1003 VV RVG"})
	c.Register(PositionDefinition{Code: "1004", Name: "Einigungsgebühr, Berufungs- oder Revisionsverfahren anhängig", Category: CategoryGeneral, Family: types.FamilyAdValorem, DefaultRate: d("1.3"), Citation: "Nr. 1004 VV RVG"})

	// Multi-party surcharge: 0.3 per additional client, at most 2.0
	c.Register(PositionDefinition{Code: "1008", Name: "Erhöhungsgebühr bei mehreren Auftraggebern", Category: CategoryGeneral, Family: types.FamilyAdValorem, DefaultRate: d("0.3"), MinRate: p("0"), MaxRate: p("2.0"), PartyCountRate: true, Citation: "Nr. 1008 VV RVG"})

	// ============================================
	// TEIL 2 - AUSSERGERICHTLICHE TÄTIGKEITEN
	// ============================================

	c.Register(PositionDefinition{Code: "2100", Name: "Prüfung der Erfolgsaussicht eines Rechtsmittels", Category: CategoryOutOfCourt, Family: types.FamilyAdValorem, DefaultRate: d("0.75"), MinRate: p("0.5"), MaxRate: p("1.0"), Citation: "Nr. 2100 VV RVG"})

	// Credit source: half of the business fee is credited against 3100
	c.Register(PositionDefinition{Code: "2300", Name: "Geschäftsgebühr", Category: CategoryOutOfCourt, Family: types.FamilyAdValorem, DefaultRate: d("1.3"), MinRate: p("0.5"), MaxRate: p("2.5"), CreditTarget: "3100", Citation: "Nr. 2300 VV RVG"})

	c.Register(PositionDefinition{Code: "2500", Name: "Beratungshilfegebühr", Category: CategoryLegalAdvice, Family: types.FamilyFixed, Citation: "Nr. 2500 VV RVG"})
	c.Register(PositionDefinition{Code: "2501", Name: "Beratungsgebühr (Beratungshilfe)", Category: CategoryLegalAdvice, Family: types.FamilyFixed, Citation: "Nr. 2501 VV RVG"})
	c.Register(PositionDefinition{Code: "2503", Name: "Geschäftsgebühr (Beratungshilfe)", Category: CategoryLegalAdvice, Family: types.FamilyFixed, Citation: "Nr. 2503 VV RVG"})

	// ============================================
	// TEIL 3 - BÜRGERLICHE RECHTSSTREITIGKEITEN
	// ============================================

	c.Register(PositionDefinition{Code: "3100", Name: "Verfahrensgebühr", Category: CategoryCivil, Family: types.FamilyAdValorem, DefaultRate: d("1.3"), Citation: "Nr. 3100 VV RVG"})
	c.Register(PositionDefinition{Code: "3101", Name: "Verfahrensgebühr bei vorzeitiger Beendigung des Auftrags", Category: CategoryCivil, Family: types.FamilyAdValorem, DefaultRate: d("0.8"), Citation: "Nr. 3101 VV RVG"})
	c.Register(PositionDefinition{Code: "3104", Name: "Terminsgebühr", Category: CategoryCivil, Family: types.FamilyAdValorem, DefaultRate: d("1.2"), Citation: "Nr. 3104 VV RVG"})
	c.Register(PositionDefinition{Code: "3105", Name: "Terminsgebühr bei Säumnis", Category: CategoryCivil, Family: types.FamilyAdValorem, DefaultRate: d("0.5"), Citation: "Nr. 3105 VV RVG"})

	c.Register(PositionDefinition{Code: "3200", Name: "Verfahrensgebühr Berufung", Category: CategoryAppeal, Family: types.FamilyAdValorem, DefaultRate: d("1.6"), Citation: "Nr. 3200 VV RVG"})
	c.Register(PositionDefinition{Code: "3201", Name: "Verfahrensgebühr Berufung bei vorzeitiger Beendigung", Category: CategoryAppeal, Family: types.FamilyAdValorem, DefaultRate: d("1.1"), Citation: "Nr. 3201 VV RVG"})
	c.Register(PositionDefinition{Code: "3202", Name: "Terminsgebühr Berufung", Category: CategoryAppeal, Family: types.FamilyAdValorem, DefaultRate: d("1.2"), Citation: "Nr. 3202 VV RVG"})

	c.Register(PositionDefinition{Code: "3305", Name: "Verfahrensgebühr Mahnverfahren", Category: CategoryEnforcement, Family: types.FamilyAdValorem, DefaultRate: d("1.0"), Citation: "Nr. 3305 VV RVG"})
	c.Register(PositionDefinition{Code: "3309", Name: "Verfahrensgebühr Zwangsvollstreckung", Category: CategoryEnforcement, Family: types.FamilyAdValorem, DefaultRate: d("0.3"), Citation: "Nr. 3309 VV RVG"})
	c.Register(PositionDefinition{Code: "3310", Name: "Terminsgebühr Zwangsvollstreckung", Category: CategoryEnforcement, Family: types.FamilyAdValorem, DefaultRate: d("0.3"), Citation: "Nr. 3310 VV RVG"})
	c.Register(PositionDefinition{Code: "3403", Name: "Verfahrensgebühr sonstige Einzeltätigkeiten", Category: CategoryCivil, Family: types.FamilyAdValorem, DefaultRate: d("0.8"), Citation: "Nr. 3403 VV RVG"})

	// ============================================
	// TEIL 4 - STRAFSACHEN (Betragsrahmengebühren)
	// ============================================

	c.Register(PositionDefinition{Code: "4100", Name: "Grundgebühr", Category: CategoryCriminal, Family: types.FamilyRangeBound, MinAmount: p("44"), MaxAmount: p("396"), Citation: "Nr. 4100 VV RVG"})
	c.Register(PositionDefinition{Code: "4104", Name: "Verfahrensgebühr vorbereitendes Verfahren", Category: CategoryCriminal, Family: types.FamilyRangeBound, MinAmount: p("44"), MaxAmount: p("319"), Citation: "Nr. 4104 VV RVG"})
	c.Register(PositionDefinition{Code: "4106", Name: "Verfahrensgebühr erster Rechtszug Amtsgericht", Category: CategoryCriminal, Family: types.FamilyRangeBound, MinAmount: p("44"), MaxAmount: p("319"), Citation: "Nr. 4106 VV RVG"})
	c.Register(PositionDefinition{Code: "4108", Name: "Terminsgebühr erster Rechtszug Amtsgericht", Category: CategoryCriminal, Family: types.FamilyRangeBound, MinAmount: p("77"), MaxAmount: p("528"), Citation: "Nr. 4108 VV RVG"})

	// ============================================
	// TEIL 7 - AUSLAGEN
	// ============================================

	c.Register(PositionDefinition{Code: "7000", Name: "Dokumentenpauschale", Category: CategoryExpenses, Family: types.FamilyExpense, Formula: types.FormulaPerUnit,
		UnitRate: d("0.50"),
		UnitTiers: []pricing.Tier{
			{UpTo: p("50"), UnitRate: d("0.50")},
			{UnitRate: d("0.15")},
		},
		Citation: "Nr. 7000 VV RVG"})
	c.Register(PositionDefinition{Code: "7001", Name: "Entgelte für Post- und Telekommunikationsdienstleistungen", Category: CategoryExpenses, Family: types.FamilyExpense, Formula: types.FormulaActual, Citation: "Nr. 7001 VV RVG"})
	c.Register(PositionDefinition{Code: "7002", Name: "Pauschale für Entgelte für Post- und Telekommunikationsdienstleistungen", Category: CategoryExpenses, Family: types.FamilyExpense, Formula: types.FormulaPercentOfFees, Percentage: d("0.20"), CapAmount: p("20.00"), AutoAppend: true, Citation: "Nr. 7002 VV RVG"})
	c.Register(PositionDefinition{Code: "7003", Name: "Fahrtkosten für Geschäftsreise mit eigenem Kraftfahrzeug", Category: CategoryExpenses, Family: types.FamilyExpense, Formula: types.FormulaPerUnit, UnitRate: d("0.42"), Citation: "Nr. 7003 VV RVG"})
	c.Register(PositionDefinition{Code: "7004", Name: "Fahrtkosten für Geschäftsreise mit anderen Verkehrsmitteln", Category: CategoryExpenses, Family: types.FamilyExpense, Formula: types.FormulaActual, Citation: "Nr. 7004 VV RVG"})
	c.Register(PositionDefinition{Code: "7005", Name: "Tage- und Abwesenheitsgeld", Category: CategoryExpenses, Family: types.FamilyExpense, Formula: types.FormulaTieredFixed,
		DailyRates: map[AbsenceTier]decimal.Decimal{
			AbsenceUpTo4Hours: d("30"),
			Absence4To8Hours:  d("50"),
			AbsenceOver8Hours: d("80"),
		},
		Citation: "Nr. 7005 VV RVG"})
	c.Register(PositionDefinition{Code: "7006", Name: "Sonstige Auslagen anlässlich einer Geschäftsreise", Category: CategoryExpenses, Family: types.FamilyExpense, Formula: types.FormulaActual, Citation: "Nr. 7006 VV RVG"})
	c.Register(PositionDefinition{Code: "7008", Name: "Umsatzsteuer auf die Vergütung", Category: CategoryExpenses, Family: types.FamilyExpense, Formula: types.FormulaPercentOfTotal, Percentage: d("0.19"), AutoAppend: true, Citation: "Nr. 7008 VV RVG"})
}

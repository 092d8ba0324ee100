// Package costing holds the numeric costing rules: landed purchase cost, the
// rolling weighted-average inventory cost, by-product netting and cost-element
// allocation. Everything here is pure; persistence lives in the oil services.
package costing

import (
	"github.com/bitfantasy/nimo-oil/internal/apperr"
)

// Landed is the breakdown of a purchase line's landed cost.
type Landed struct {
	Quantity  float64 `json:"quantity"`
	Rate      float64 `json:"rate"`
	Amount    float64 `json:"amount"`
	Transport float64 `json:"transport"`
	Handling  float64 `json:"handling"`
	Taxable   float64 `json:"taxable"`
	GSTRate   float64 `json:"gst_rate"`
	GST       float64 `json:"gst"`
	Total     float64 `json:"total"`
	UnitCost  float64 `json:"unit_cost"`
}

// LandedUnitCost computes the per-unit landed cost of a purchase line. GST is
// charged on the material amount plus transport and handling.
func LandedUnitCost(qty, rate, gstRate, transport, handling float64) (Landed, error) {
	if qty <= 0 {
		return Landed{}, &apperr.InvalidQuantityError{Field: "quantity", Value: qty}
	}
	amount := qty * rate
	taxable := amount + transport + handling
	gst := taxable * gstRate / 100
	total := amount + gst + transport + handling
	return Landed{
		Quantity:  qty,
		Rate:      rate,
		Amount:    amount,
		Transport: transport,
		Handling:  handling,
		Taxable:   taxable,
		GSTRate:   gstRate,
		GST:       gst,
		Total:     total,
		UnitCost:  total / qty,
	}, nil
}

// RollingWeightedAverage folds an inbound movement into a position. It is the
// only valuation rule in the system.
func RollingWeightedAverage(oldQty, oldAvg, inQty, inCost float64) (newQty, newAvg float64) {
	newQty = oldQty + inQty
	if newQty > 0 {
		return newQty, (oldQty*oldAvg + inQty*inCost) / newQty
	}
	return newQty, inCost
}

// NetInput carries the production figures needed to net by-product value
// against a batch's cost.
type NetInput struct {
	TotalCost   float64
	OilYield    float64
	CakeYield   float64
	CakeRate    float64
	SludgeYield float64
	SludgeRate  float64
}

// NetCost is the by-product-netted cost of a batch.
type NetCost struct {
	TotalCost    float64 `json:"total_production_cost"`
	CakeCredit   float64 `json:"cake_credit"`
	SludgeCredit float64 `json:"sludge_credit"`
	NetOilCost   float64 `json:"net_oil_cost"`
	OilCostPerKg float64 `json:"oil_cost_per_kg"`
}

// NetOilCost subtracts the estimated cake and sludge value from the total
// production cost. Cost per kg is zero when there is no oil yield.
func NetOilCost(in NetInput) NetCost {
	cake := in.CakeYield * in.CakeRate
	sludge := in.SludgeYield * in.SludgeRate
	net := in.TotalCost - cake - sludge
	out := NetCost{
		TotalCost:    in.TotalCost,
		CakeCredit:   cake,
		SludgeCredit: sludge,
		NetOilCost:   net,
	}
	if in.OilYield > 0 {
		out.OilCostPerKg = net / in.OilYield
	}
	return out
}

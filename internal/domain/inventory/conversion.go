package inventory

import (
	"github.com/shopspring/decimal"

	"github.com/jhoicas/stock-ledger/internal/domain/precision"
)

// ToItemUnit expresa una cantidad del llamador en la unidad del ítem.
// unitCost llega por unidad del llamador y se devuelve por unidad del ítem, de modo que
// |qty|·unitCost se conserva. Unidad vacía o igual a la del ítem no convierte nada.
// Devuelve domain.ErrIncompatibleUnits si no hay familia común.
func ToItemUnit(qty decimal.Decimal, unitCost *decimal.Decimal, from, itemUnit string) (decimal.Decimal, *decimal.Decimal, error) {
	if from == "" || precision.NormalizeUnit(from) == precision.NormalizeUnit(itemUnit) {
		return qty, unitCost, nil
	}
	converted, err := precision.ConvertStrict(qty, from, itemUnit, precision.DefaultPlaces)
	if err != nil {
		return qty, unitCost, err
	}
	if unitCost == nil || converted.IsZero() {
		return converted, unitCost, nil
	}
	perItemUnit, err := precision.Divide(
		precision.Multiply(*unitCost, qty.Abs(), precision.DefaultPlaces),
		converted.Abs(), precision.DefaultPlaces)
	if err != nil {
		return converted, unitCost, err
	}
	return converted, &perItemUnit, nil
}

package precision

import (
	"strings"

	"github.com/jhoicas/stock-ledger/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
)

// Family familia de conversión (volumen, peso o conteo).
type Family string

const (
	FamilyVolume Family = "volume" // base: ml
	FamilyWeight Family = "weight" // base: g
	FamilyCount  Family = "count"  // base: unit
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

// Tablas fijas: nombre de unidad -> multiplicador a la unidad base de su familia.
var unitFamilies = map[Family]map[string]decimal.Decimal{
	FamilyVolume: {
		"ml":    d("1"),
		"cl":    d("10"),
		"dl":    d("100"),
		"l":     d("1000"),
		"tsp":   d("4.92892"),
		"tbsp":  d("14.7868"),
		"fl_oz": d("29.5735"),
		"cup":   d("236.588"),
		"pt":    d("473.176"),
		"qt":    d("946.353"),
		"gal":   d("3785.41"),
	},
	FamilyWeight: {
		"mg": d("0.001"),
		"g":  d("1"),
		"kg": d("1000"),
		"oz": d("28.3495"),
		"lb": d("453.592"),
	},
	FamilyCount: {
		"unit":  d("1"),
		"each":  d("1"),
		"piece": d("1"),
		"pcs":   d("1"),
		"dozen": d("12"),
		"case":  d("24"),
	},
}

// NormalizeUnit pliega mayúsculas y espacios para comparar nombres de unidad ("KG " == "kg").
// cases.Caser guarda estado, por eso se crea uno por llamada.
func NormalizeUnit(unit string) string {
	return cases.Fold().String(strings.TrimSpace(unit))
}

// FamilyOf devuelve la familia de la unidad y su multiplicador base.
func FamilyOf(unit string) (Family, decimal.Decimal, bool) {
	u := NormalizeUnit(unit)
	for fam, table := range unitFamilies {
		if m, ok := table[u]; ok {
			return fam, m, true
		}
	}
	return "", decimal.Zero, false
}

// AreUnitsCompatible indica si ambas unidades pertenecen a la misma familia.
func AreUnitsCompatible(a, b string) bool {
	fa, _, okA := FamilyOf(a)
	fb, _, okB := FamilyOf(b)
	return okA && okB && fa == fb
}

// ConvertStrict convierte value de from a to pasando por la unidad base.
// Devuelve domain.ErrIncompatibleUnits si no hay una familia que contenga ambas.
func ConvertStrict(value decimal.Decimal, from, to string, places int32) (decimal.Decimal, error) {
	if NormalizeUnit(from) == NormalizeUnit(to) {
		return Round(value, places), nil
	}
	famFrom, mFrom, okFrom := FamilyOf(from)
	famTo, mTo, okTo := FamilyOf(to)
	if !okFrom || !okTo || famFrom != famTo {
		return value, domain.ErrIncompatibleUnits
	}
	// se multiplica sin redondear para no perder el factor de unidades pequeñas (mg, tsp)
	base := value.Mul(mFrom)
	return base.DivRound(mTo, places), nil
}

// Convert es la versión tolerante: si las unidades no son convertibles registra un warning
// y devuelve el valor original sin convertir.
func Convert(value decimal.Decimal, from, to string, places int32) decimal.Decimal {
	out, err := ConvertStrict(value, from, to, places)
	if err != nil {
		log.Warn().
			Str("from", from).
			Str("to", to).
			Str("value", value.String()).
			Msg("unidades sin familia común; se devuelve el valor sin convertir")
		return value
	}
	return out
}

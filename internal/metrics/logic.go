package metrics

// Logic is an alert comparison operator as stored in the rule document.
type Logic string

const (
	LogicEq  Logic = "eq"
	LogicGt  Logic = "gt"
	LogicLt  Logic = "lt"
	LogicGte Logic = "gte"
	LogicLte Logic = "lte"
)

func (l Logic) Valid() bool {
	switch l {
	case LogicEq, LogicGt, LogicLt, LogicGte, LogicLte:
		return true
	}
	return false
}

func (l Logic) Check(value, threshold float64) bool {
	switch l {
	case LogicEq:
		return value == threshold
	case LogicGt:
		return value > threshold
	case LogicLt:
		return value < threshold
	case LogicGte:
		return value >= threshold
	case LogicLte:
		return value <= threshold
	}
	return false
}

func (l Logic) String() string {
	switch l {
	case LogicEq:
		return "=="
	case LogicGt:
		return ">"
	case LogicLt:
		return "<"
	case LogicGte:
		return ">="
	case LogicLte:
		return "<="
	}
	return string(l)
}

package types

import "reflect"

// Built-in type names.
const (
	Float  = "Float"
	Int    = "Int"
	Bool   = "Bool"
	String = "String"
)

var (
	floatType  = reflect.TypeOf(float64(0))
	intType    = reflect.TypeOf(int64(0))
	boolType   = reflect.TypeOf(false)
	stringType = reflect.TypeOf("")
)

// Builtin returns the declarations for the built-in connection types.
// Float is registered first and is therefore the fallback for unknown names.
func Builtin() []Declaration {
	return []Declaration{
		DeclarationFunc(func() Data {
			return Data{
				Name:       Float,
				Color:      "#00FFFF",
				InputType:  floatType,
				OutputType: floatType,
				Default:    float64(0),
				Accepts:    []string{Int},
			}
		}),
		DeclarationFunc(func() Data {
			return Data{
				Name:       Int,
				Color:      "#4C8BF5",
				InputType:  intType,
				OutputType: intType,
				Default:    int64(0),
			}
		}),
		DeclarationFunc(func() Data {
			return Data{
				Name:       Bool,
				Color:      "#E06C75",
				InputType:  boolType,
				OutputType: boolType,
				Default:    false,
			}
		}),
		DeclarationFunc(func() Data {
			return Data{
				Name:       String,
				Color:      "#98C379",
				InputType:  stringType,
				OutputType: stringType,
				Default:    "",
			}
		}),
	}
}

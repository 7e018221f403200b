package optionmodels

import "fmt"

type OptionSide string

const (
	Put  OptionSide = "P"
	Call OptionSide = "C"
)

func (s OptionSide) Validate() error {
	if s != Put && s != Call {
		return fmt.Errorf("OptionSide: Validate: invalid option side: %s", s)
	}

	return nil
}

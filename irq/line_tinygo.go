//go:build tinygo && cortexm

package irq

import "runtime/interrupt"

var _ Line = interrupt.Interrupt{}

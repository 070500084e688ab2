package parser

import "dtp/internal/domain"

// Parser turns the raw standard output of a harness into a TestReport
type Parser interface {
	Parse(env domain.Environment, raw string) (domain.TestReport, error)
}

package providers

import (
	"fmt"
	"shortsd/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return fmt.Errorf("invalid configuration: %s", v.Errors.One())
	}
	if cv.conf.Ranking.TopN > cv.conf.Ranking.CandidateWindow {
		return fmt.Errorf("invalid configuration: ranking.topN (%d) exceeds ranking.candidateWindow (%d)",
			cv.conf.Ranking.TopN, cv.conf.Ranking.CandidateWindow)
	}
	return nil
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

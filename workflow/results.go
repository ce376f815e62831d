package workflow

import (
	"github.com/govmesh/govmesh/core"
	"github.com/govmesh/govmesh/schema"
	"github.com/govmesh/govmesh/validation"
)

// Typed accessors over step responses. Responses travel in process, so the
// data is the concrete Go value the agent produced; a false second return
// means the step is absent, failed, or carried an unexpected type.

func evalResult(prior map[StepID]core.Response, id StepID) (validation.Result, bool) {
	resp, ok := prior[id]
	if !ok || !resp.Success {
		return validation.Result{}, false
	}
	res, ok := resp.Data.(validation.Result)
	return res, ok
}

func kycResult(prior map[StepID]core.Response, id StepID) (validation.KYCResult, bool) {
	resp, ok := prior[id]
	if !ok || !resp.Success {
		return validation.KYCResult{}, false
	}
	res, ok := resp.Data.(validation.KYCResult)
	return res, ok
}

func riskResult(prior map[StepID]core.Response, id StepID) (validation.RiskResult, bool) {
	resp, ok := prior[id]
	if !ok || !resp.Success {
		return validation.RiskResult{}, false
	}
	res, ok := resp.Data.(validation.RiskResult)
	return res, ok
}

func driftResult(prior map[StepID]core.Response, id StepID) (schema.DriftResult, bool) {
	resp, ok := prior[id]
	if !ok || !resp.Success {
		return schema.DriftResult{}, false
	}
	res, ok := resp.Data.(schema.DriftResult)
	return res, ok
}

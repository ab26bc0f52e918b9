package recipe

import (
	"context"

	"github.com/kbukum/etlkit/config"
	"github.com/kbukum/etlkit/entity"
	"github.com/kbukum/etlkit/errors"
	"github.com/kbukum/etlkit/logger"
	"github.com/kbukum/etlkit/observability"
	"github.com/kbukum/etlkit/pipeline"
	"github.com/kbukum/etlkit/registry"
)

// stage is a resolved step after the first.
type stage struct {
	name      string
	kind      string
	transform registry.Transform
	filter    registry.Filter
}

func (s stage) batch(ctx context.Context, b pipeline.Batch[entity.User]) (pipeline.Batch[entity.User], error) {
	if s.kind == observability.StageKindFilter {
		return s.filter.ApplyToUsers(ctx, b)
	}
	return s.transform.ApplyToUsers(ctx, b)
}

func (s stage) stream(st pipeline.Stream[entity.User], errs *pipeline.ErrorLog) (pipeline.Stream[entity.User], error) {
	if s.kind == observability.StageKindFilter {
		return s.filter.ApplyToUserStream(st, errs)
	}
	return s.transform.ApplyToUserStream(st)
}

type plan struct {
	first  registry.Transform
	stages []stage
}

// newPlan resolves every step before any data is read. The first step must
// name a record transform. Later steps that do not resolve are skipped
// with a warning or rejected, depending on policy.
func newPlan(steps []Step, policy string, log *logger.Logger) (plan, error) {
	if len(steps) == 0 {
		return plan{}, errors.InvalidConfig("steps", "at least one transform step is required")
	}

	first, ok := registry.LookupTransform(steps[0].Value)
	if !ok {
		return plan{}, errors.ConfigLookup(ActionTransform, steps[0].Value)
	}
	if err := first.CheckRecords(); err != nil {
		return plan{}, err
	}

	p := plan{first: first}
	for _, step := range steps[1:] {
		s, found := resolve(step)
		if !found {
			if policy == config.UnknownStepsFail {
				return plan{}, errors.ConfigLookup(step.Action, step.Value)
			}
			log.Warn("unknown step skipped", logger.Fields("action", step.Action, "value", step.Value))
			continue
		}
		if s.kind == observability.StageKindTransform {
			if err := s.transform.CheckUsers(); err != nil {
				return plan{}, err
			}
		}
		p.stages = append(p.stages, s)
	}
	return p, nil
}

func resolve(step Step) (stage, bool) {
	switch step.Action {
	case ActionTransform:
		t, ok := registry.LookupTransform(step.Value)
		return stage{name: step.Value, kind: observability.StageKindTransform, transform: t}, ok
	case ActionFilter:
		f, ok := registry.LookupFilter(step.Value)
		return stage{name: step.Value, kind: observability.StageKindFilter, filter: f}, ok
	default:
		return stage{}, false
	}
}

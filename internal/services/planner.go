package services

import (
	"github.com/vvka-141/pgplan/internal/graph"
	"github.com/vvka-141/pgplan/internal/ident"
	"github.com/vvka-141/pgplan/pkg/pgplan"
)

// PlanService implements pgplan.Planner. Planning is pure: the same
// corpus always yields the same plan or the same structured error, and
// nothing touches the database.
type PlanService struct{}

// NewPlanService creates a PlanService.
func NewPlanService() *PlanService {
	return &PlanService{}
}

// PlanResult carries the schedule together with the source for each
// planned object, so the deployer can execute them in order.
type PlanResult struct {
	// Plan is the dependency-respecting deployment order of all derived
	// objects. Tables never appear.
	Plan pgplan.DeploymentPlan

	// Sources maps each planned object name to its definition source.
	Sources map[pgplan.ObjectName]pgplan.SourceFile
}

// PlanCorpus extracts identifiers from every source, builds the
// dependency graph and schedules it. Any extraction, classification or
// scheduling error aborts the whole corpus.
func (s *PlanService) PlanCorpus(corpus pgplan.Corpus) (*PlanResult, error) {
	tables := make([]graph.TableDecl, 0, len(corpus.Tables))
	for _, src := range corpus.Tables {
		name, raw, err := ident.DeclaredName(src)
		if err != nil {
			return nil, err
		}
		tables = append(tables, graph.TableDecl{Name: name, RawName: raw, Path: src.Path})
	}

	defs := make([]*ident.Definition, 0, len(corpus.Objects))
	sources := make(map[pgplan.ObjectName]pgplan.SourceFile, len(corpus.Objects))
	for _, src := range corpus.Objects {
		def, err := ident.Extract(src)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
		sources[def.Name] = src
	}

	g, err := graph.Build(tables, defs)
	if err != nil {
		return nil, err
	}

	plan, err := g.Schedule()
	if err != nil {
		return nil, err
	}

	return &PlanResult{Plan: plan, Sources: sources}, nil
}

// Plan implements pgplan.Planner.
func (s *PlanService) Plan(corpus pgplan.Corpus) (pgplan.DeploymentPlan, error) {
	result, err := s.PlanCorpus(corpus)
	if err != nil {
		return nil, err
	}
	return result.Plan, nil
}

var _ pgplan.Planner = (*PlanService)(nil)

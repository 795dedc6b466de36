// Package premortem defines the shared types, interfaces and helpers of the pre-mortem
// analysis service: the PreMortemAnalysis document produced by an external generative
// model, the FailureScenario records it carries, the ReferenceLookup and ScenarioValidator
// contracts used by the admission gate, and the coded errors, configuration and logging
// setup used across subpackages.
//
// Generated documents are untrusted. They pass once through the admission gate (package gate),
// which attaches an AuthoritativeLookup to every scenario and vetoes scenarios that fail policy
// (package policy) before anything is stored (package store) or served (package restapi).
package premortem

// Package rules generates Prometheus recording and alert rule files
// as Kubernetes PrometheusRule custom resources.
package rules

import "maps"

// Prefix names every PrometheusRule CR and rule group borsa ships, and the
// recording rules themselves (borsa:<metric>:<window>).
const Prefix = "borsa"

const (
	apiVersion = "monitoring.coreos.com/v1"
	kind       = "PrometheusRule"
)

// selectorLabels match the Prometheus instance that loads system rules.
var selectorLabels = map[string]string{
	"prometheus": "system-rules-prometheus",
}

// PrometheusRule is a Kubernetes custom resource for Prometheus Operator.
type PrometheusRule struct {
	APIVersion string                 `yaml:"apiVersion"`
	Kind       string                 `yaml:"kind"`
	Metadata   PrometheusRuleMetadata `yaml:"metadata"`
	Spec       PrometheusRuleSpec     `yaml:"spec"`
}

// PrometheusRuleMetadata holds the CR metadata fields.
type PrometheusRuleMetadata struct {
	Name   string            `yaml:"name"`
	Labels map[string]string `yaml:"labels,omitempty"`
}

// PrometheusRuleSpec holds the rule groups.
type PrometheusRuleSpec struct {
	Groups []RuleGroup `yaml:"groups"`
}

// RuleGroup is a named collection of recording or alerting rules.
type RuleGroup struct {
	Name     string `yaml:"name"`
	Interval string `yaml:"interval,omitempty"`
	Rules    []Rule `yaml:"rules"`
}

// Rule is a single recording or alerting rule.
// Use Record for recording rules and Alert for alerting rules.
type Rule struct {
	Record      string            `yaml:"record,omitempty"`
	Alert       string            `yaml:"alert,omitempty"`
	Expr        string            `yaml:"expr"`
	For         string            `yaml:"for,omitempty"`
	Labels      map[string]string `yaml:"labels,omitempty"`
	Annotations map[string]string `yaml:"annotations,omitempty"`
}

// Records returns the names produced by the CR's recording rules.
func (p PrometheusRule) Records() []string {
	var names []string
	for _, g := range p.Spec.Groups {
		for _, r := range g.Rules {
			if r.Record != "" {
				names = append(names, r.Record)
			}
		}
	}
	return names
}

// newPrometheusRule wraps groups in a CR named borsa-<name>.
func newPrometheusRule(name string, groups ...RuleGroup) PrometheusRule {
	return PrometheusRule{
		APIVersion: apiVersion,
		Kind:       kind,
		Metadata: PrometheusRuleMetadata{
			Name:   Prefix + "-" + name,
			Labels: maps.Clone(selectorLabels),
		},
		Spec: PrometheusRuleSpec{Groups: groups},
	}
}

// newGroup returns a rule group named borsa-<name>.
func newGroup(name string, rules ...Rule) RuleGroup {
	return RuleGroup{Name: Prefix + "-" + name, Rules: rules}
}

// record returns a recording rule named borsa:<name>.
func record(name, expr string) Rule {
	return Rule{Record: Prefix + ":" + name, Expr: expr}
}

// alert returns an alerting rule named Borsa<name>.
func alert(name, expr, forDuration, severity, summary, description string) Rule {
	return Rule{
		Alert: "Borsa" + name,
		Expr:  expr,
		For:   forDuration,
		Labels: map[string]string{
			"severity": severity,
		},
		Annotations: map[string]string{
			"summary":     summary,
			"description": description,
		},
	}
}

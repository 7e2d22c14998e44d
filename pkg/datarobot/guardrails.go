package datarobot

import (
	"encoding/json"
	"fmt"

	"github.com/pulumi/pulumi/sdk/v3/go/pulumi"
	"github.com/samber/lo"

	datarobotsdk "github.com/datarobot-community/pulumi-datarobot/sdk/go/datarobot"
)

// JSON renders the condition the way the moderation service reads it.
func (c Condition) JSON() (string, error) {
	encoded, err := json.Marshal(struct {
		Comparand  any                      `json:"comparand"`
		Comparator GuardConditionComparator `json:"comparator"`
	}{
		Comparand:  c.Comparand,
		Comparator: c.Comparator,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode guard condition: %w", err)
	}

	return string(encoded), nil
}

// toProviderArgs converts the guard configuration to the provider's input type.
func (g CustomModelGuardConfigurationArgs) toProviderArgs() (*datarobotsdk.CustomModelGuardConfigurationArgs, error) {
	condition, err := g.Intervention.Condition.JSON()
	if err != nil {
		return nil, err
	}

	args := &datarobotsdk.CustomModelGuardConfigurationArgs{
		Name:         pulumi.String(g.Name),
		TemplateName: pulumi.String(string(g.TemplateName)),
		Stages: pulumi.ToStringArray(lo.Map(g.Stages, func(s Stage, _ int) string {
			return string(s)
		})),
		Intervention: &datarobotsdk.CustomModelGuardConfigurationInterventionArgs{
			Action:    pulumi.String(string(g.Intervention.Action)),
			Condition: pulumi.String(condition),
			Message:   pulumi.String(g.Intervention.Message),
		},
	}
	if g.InputColumnName != "" {
		args.InputColumnName = pulumi.String(g.InputColumnName)
	}
	if g.OutputColumnName != "" {
		args.OutputColumnName = pulumi.String(g.OutputColumnName)
	}

	return args, nil
}

func toGuardConfigurationArray(guards []CustomModelGuardConfigurationArgs) (datarobotsdk.CustomModelGuardConfigurationArray, error) {
	configurations := make(datarobotsdk.CustomModelGuardConfigurationArray, 0, len(guards))
	for _, guard := range guards {
		args, err := guard.toProviderArgs()
		if err != nil {
			return nil, fmt.Errorf("guard %q: %w", guard.Name, err)
		}
		configurations = append(configurations, args)
	}

	return configurations, nil
}

package steps_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/arbor/pkg/flow"
	"github.com/aretw0/arbor/pkg/steps"
)

func TestFuncStep_RunThenWait(t *testing.T) {
	ran := false
	step := &steps.FuncStep{
		Fn: func(context.Context, *flow.Connector) error {
			ran = true
			return nil
		},
	}

	out, err := step.Run(context.Background(), newConn(""))
	require.NoError(t, err)
	assert.True(t, ran)
	assert.Equal(t, flow.Waiting, out)

	out, err = step.ProcessResponse(context.Background(), newConn("anything"))
	require.NoError(t, err)
	assert.Equal(t, flow.Done, out)
}

func TestFuncStep_NoWait(t *testing.T) {
	step := &steps.FuncStep{NoWait: true}
	assert.True(t, step.NonBlocking())

	out, err := step.Run(context.Background(), newConn(""))
	require.NoError(t, err)
	assert.Equal(t, flow.Done, out)
}

func TestFuncStep_FailureHandling(t *testing.T) {
	boom := errors.New("callback failed")

	t.Run("errors abort by default", func(t *testing.T) {
		step := &steps.FuncStep{
			Fn: func(context.Context, *flow.Connector) error { return boom },
		}
		_, err := step.Run(context.Background(), newConn(""))
		assert.ErrorIs(t, err, boom)
	})

	t.Run("skip on failure advances instead", func(t *testing.T) {
		step := &steps.FuncStep{
			Fn:            func(context.Context, *flow.Connector) error { return boom },
			SkipOnFailure: true,
		}
		out, err := step.Run(context.Background(), newConn(""))
		require.NoError(t, err)
		assert.Equal(t, flow.Done, out)
	})
}

func TestFuncStep_OnResponseDecidesOutcome(t *testing.T) {
	step := &steps.FuncStep{
		OnResponse: func(_ context.Context, c *flow.Connector) (flow.Outcome, error) {
			if c.Text != "yes" {
				return flow.Waiting, nil
			}
			return flow.Done, nil
		},
	}

	out, err := step.ProcessResponse(context.Background(), newConn("no"))
	require.NoError(t, err)
	assert.Equal(t, flow.Waiting, out)

	out, err = step.ProcessResponse(context.Background(), newConn("yes"))
	require.NoError(t, err)
	assert.Equal(t, flow.Done, out)
}

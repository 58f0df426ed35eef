package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/spf13/cobra"
)

func newLambdaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Serve the chat endpoint as an API Gateway Lambda function",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLambda(cmd.Context(), a)
		},
	}
}

func runLambda(ctx context.Context, a *app) error {
	h, err := buildHandler(ctx, a, nil)
	if err != nil {
		return err
	}
	lambda.Start(h.Handle)
	return nil
}

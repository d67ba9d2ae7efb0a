// Command infra synthesizes the AWS deployment of the coin counter: the
// journal table and the read-only get-coins function.
package main

import (
	"github.com/aws/aws-cdk-go/awscdk/v2"
	"github.com/aws/aws-cdk-go/awscdk/v2/awsdynamodb"
	"github.com/aws/aws-cdk-go/awscdk/v2/awslambda"
	"github.com/aws/constructs-go/constructs/v10"
	"github.com/aws/jsii-runtime-go"
)

type CoinCounterStackProps struct {
	awscdk.StackProps
	// Asset is the directory holding the compiled get-coins handler.
	Asset string
}

func NewCoinCounterStack(scope constructs.Construct, id string, props *CoinCounterStackProps) awscdk.Stack {
	stack := awscdk.NewStack(scope, &id, &props.StackProps)

	table := awsdynamodb.NewTable(stack, jsii.String("Journal"), &awsdynamodb.TableProps{
		PartitionKey:  &awsdynamodb.Attribute{Name: jsii.String("pk"), Type: awsdynamodb.AttributeType_STRING},
		SortKey:       &awsdynamodb.Attribute{Name: jsii.String("sk"), Type: awsdynamodb.AttributeType_STRING},
		BillingMode:   awsdynamodb.BillingMode_PAY_PER_REQUEST,
		RemovalPolicy: awscdk.RemovalPolicy_DESTROY,
	})

	getCoins := awslambda.NewFunction(stack, jsii.String("GetCoins"), &awslambda.FunctionProps{
		Runtime:    awslambda.Runtime_GO_1_X(),
		Handler:    jsii.String("get-coins"),
		Code:       awslambda.Code_FromAsset(jsii.String(props.Asset), nil),
		MemorySize: jsii.Number(128),
		Timeout:    awscdk.Duration_Seconds(jsii.Number(10)),
		Tracing:    awslambda.Tracing_ACTIVE,
		Environment: &map[string]*string{
			"COINS_STORE":        jsii.String("dynamo"),
			"COINS_DYNAMO_TABLE": table.TableName(),
			"COINS_LOG_FORMAT":   jsii.String("json"),
		},
	})

	table.GrantReadData(getCoins)

	awscdk.NewCfnOutput(stack, jsii.String("TableName"), &awscdk.CfnOutputProps{Value: table.TableName()})
	awscdk.NewCfnOutput(stack, jsii.String("FunctionName"), &awscdk.CfnOutputProps{Value: getCoins.FunctionName()})

	return stack
}

func main() {
	app := awscdk.NewApp(nil)

	NewCoinCounterStack(app, "CoinCounter", &CoinCounterStackProps{
		StackProps: awscdk.StackProps{Env: env()},
		Asset:      "../../dist/get-coins",
	})

	app.Synth(nil)
}

// env leaves account and region to the CLI's resolved credentials.
func env() *awscdk.Environment {
	return nil
}

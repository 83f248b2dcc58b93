package conf

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

func (p PostgresConfig) usesSecret() bool {
	return p.Host != "localhost" && p.PasswordSecretName != ""
}

// ConnString builds the pgx connection string. Outside localhost the
// password is read from AWS Secrets Manager when a secret name is set.
func (p PostgresConfig) ConnString(ctx context.Context, awsCfg aws.Config) (string, error) {
	pw := p.Password
	if p.usesSecret() {
		secretValue, err := getSecretFromAWS(ctx, awsCfg, p.PasswordSecretName)
		if err != nil {
			return "", fmt.Errorf("failed to get postgres password from AWS: %w", err)
		}
		var secret struct {
			Password string `json:"password"`
		}
		if err := json.Unmarshal([]byte(secretValue), &secret); err != nil {
			return "", fmt.Errorf("failed to parse postgres password secret: %w", err)
		}
		pw = secret.Password
	}

	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, pw, p.DB, p.SSLMode), nil
}

func getSecretFromAWS(ctx context.Context, awsCfg aws.Config, secretName string) (string, error) {
	svc := secretsmanager.NewFromConfig(awsCfg)
	input := &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretName),
	}
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	result, err := svc.GetSecretValue(ctx, input)
	if err != nil {
		return "", err
	}
	return aws.ToString(result.SecretString), nil
}

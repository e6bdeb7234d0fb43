package aws

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/sts"
	"github.com/aws/aws-sdk-go/service/sts/stsiface"

	"riprice/internal/logging"
)

// PricingRegion is the only region serving the Price List query API
const PricingRegion = "us-east-1"

// NewSession creates a new AWS session with the specified profile and region
func NewSession(profile string, region string) (*session.Session, error) {
	cfg := aws.NewConfig()
	if region != "" {
		cfg = cfg.WithRegion(region)
	}

	opts := session.Options{
		Config:            *cfg,
		Profile:           profile,
		SharedConfigState: session.SharedConfigEnable,
	}

	return session.NewSessionWithOptions(opts)
}

// GetSessionInRegion creates a new session in the specified region using credentials from an existing session
func GetSessionInRegion(sess *session.Session, region string) (*session.Session, error) {
	if region == "" {
		return sess, nil
	}

	// Uploads of large outputs must not hang forever on a stalled connection.
	httpClient := &http.Client{
		Timeout: 10 * time.Minute,
	}

	newSess, err := session.NewSession(sess.Config.Copy().WithRegion(region).WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	return newSess, nil
}

// ResolveRoleARN turns a role name into an ARN in the caller's account.
// Values that are already ARNs are returned unchanged.
func ResolveRoleARN(api stsiface.STSAPI, role string) (string, error) {
	if strings.HasPrefix(role, "arn:") {
		return role, nil
	}

	identity, err := api.GetCallerIdentity(&sts.GetCallerIdentityInput{})
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}
	if identity.Account == nil {
		return "", fmt.Errorf("account ID is nil")
	}

	return fmt.Sprintf("arn:aws:iam::%s:role/%s", aws.StringValue(identity.Account), role), nil
}

// AssumeRole creates a new session by assuming role, a role name in the caller's account or a full ARN
func AssumeRole(sess *session.Session, role string) (*session.Session, error) {
	if role == "" {
		return sess, nil
	}

	roleARN, err := ResolveRoleARN(sts.New(sess), role)
	if err != nil {
		return nil, err
	}

	logging.Debug("Assuming role", map[string]interface{}{
		"role_arn": roleARN,
	})

	creds := stscreds.NewCredentials(sess, roleARN)
	assumed, err := session.NewSession(sess.Config.Copy().WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to assume role %s: %w", roleARN, err)
	}

	return assumed, nil
}

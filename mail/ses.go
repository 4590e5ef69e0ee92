package mail

import (
	"context"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"
)

const charset = "UTF-8"

// SESAPI is the part of the sesv2.Client used to send emails.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender sends emails via AWS SES.
type SESSender struct {
	client SESAPI
	from   From
}

// NewSESSender connects to SES in region. If accessKey and secretKey are empty,
// the default credential chain of the AWS SDK is used.
func NewSESSender(ctx context.Context, from From, region, accessKey, secretKey string) (*SESSender, error) {
	if region == "" {
		region = "eu-central-1"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(region)}
	if accessKey != "" && secretKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: could not load aws config: %w", ErrSendFailed, err)
	}

	return NewSESSenderWithClient(sesv2.NewFromConfig(cfg), from), nil
}

func NewSESSenderWithClient(client SESAPI, from From) *SESSender {
	return &SESSender{client: client, from: from}
}

func (s *SESSender) Send(ctx context.Context, msg Message) (SendResult, error) {
	if err := msg.validate(); err != nil {
		return SendResult{}, err
	}

	body := &types.Body{}
	if msg.Text != "" {
		body.Text = &types.Content{Data: aws.String(msg.Text), Charset: aws.String(charset)}
	}

	if msg.HTML != "" {
		body.Html = &types.Content{Data: aws.String(msg.HTML), Charset: aws.String(charset)}
	}

	input := &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(s.from.String()),
		Destination:      &types.Destination{ToAddresses: []string{msg.To}},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject), Charset: aws.String(charset)},
				Body:    body,
			},
		},
		EmailTags: tags(msg.Tags),
	}

	out, err := s.client.SendEmail(ctx, input)
	if err != nil {
		return SendResult{}, fmt.Errorf("%w: %w", ErrSendFailed, err)
	}

	return SendResult{MessageID: aws.ToString(out.MessageId)}, nil
}

func tags(m map[string]string) []types.MessageTag {
	if len(m) == 0 {
		return nil
	}

	names := make([]string, 0, len(m))
	for k := range m {
		names = append(names, k)
	}

	sort.Strings(names)

	t := make([]types.MessageTag, 0, len(m))
	for _, k := range names {
		t = append(t, types.MessageTag{Name: aws.String(k), Value: aws.String(m[k])})
	}

	return t
}

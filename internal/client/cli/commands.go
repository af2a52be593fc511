package cli

import (
	"context"
	"fmt"
	"math/rand/v2"

	"github.com/dmitrijs2005/userservice/internal/client/api"
	"github.com/dmitrijs2005/userservice/internal/common"
)

// mathQuestion is a test seam returning the operands of the arithmetic
// captcha.
var mathQuestion = func() (int, int) {
	return rand.IntN(20) + 1, rand.IntN(20) + 1
}

func (a *App) Register(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "-Enter user name", a.out)
	if err != nil {
		return err
	}
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	req := api.RegisterRequest{Username: userName, Email: email, Password: string(password)}

	kind, err := GetChoice(a.reader, "-Captcha type", []string{"math", "recaptcha"}, a.out)
	if err != nil {
		return err
	}
	req.VerificationType = kind

	if kind == "math" {
		x, y := mathQuestion()
		answer, err := GetSimpleText(a.reader, fmt.Sprintf("-What is %d + %d?", x, y), a.out)
		if err != nil {
			return err
		}
		req.MathToken = fmt.Sprintf("%d + %d = %s", x, y, answer)
	} else {
		token, err := GetSimpleText(a.reader, "-Paste the reCAPTCHA response token", a.out)
		if err != nil {
			return err
		}
		req.RecaptchaToken = token
	}

	env, err := a.api.Register(ctx, req)
	if err := a.report(ctx, env, err); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "A confirmation link was sent to", email)
	return nil
}

func (a *App) Verify(ctx context.Context) error {
	link, err := GetSimpleText(a.reader, "-Paste the confirmation link (empty to enter email and token)", a.out)
	if err != nil {
		return err
	}
	if link != "" {
		env, err := a.api.VerifyLink(ctx, link)
		return a.report(ctx, env, err)
	}

	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	token, err := GetSimpleText(a.reader, "-Enter token", a.out)
	if err != nil {
		return err
	}
	env, err := a.api.VerifyEmail(ctx, api.VerifyEmailRequest{Email: email, Token: token})
	return a.report(ctx, env, err)
}

func (a *App) Login(ctx context.Context) error {
	email, err := GetSimpleText(a.reader, "-Enter email", a.out)
	if err != nil {
		return err
	}
	password, err := GetPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	env, err := a.api.Login(ctx, api.LoginRequest{Email: email, Password: string(password)})
	if err == nil && env.Response.User != nil {
		a.userName = env.Response.User.Username
	}
	return a.report(ctx, env, err)
}

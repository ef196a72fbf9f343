package main

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dtroode/account-client/internal/model"
	"github.com/dtroode/account-client/internal/route"
	"github.com/dtroode/account-client/internal/twofa"
)

func signupCommand(a *app) *cobra.Command {
	var s model.Signup
	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if s.Username, err = a.valueOrPrompt(s.Username, "Username"); err != nil {
				return err
			}
			if s.Email, err = a.valueOrPrompt(s.Email, "Email"); err != nil {
				return err
			}
			if s.Password, err = a.valueOrPrompt(s.Password, "Password"); err != nil {
				return err
			}

			user, err := a.client.Auth.Signup(cmd.Context(), s)
			if err != nil {
				return fmt.Errorf("signup failed: %s", model.Message(err))
			}
			a.printf("Account %s created. You can now log in.\n", user.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&s.Username, "username", "", "Username")
	cmd.Flags().StringVar(&s.Email, "email", "", "Email")
	cmd.Flags().StringVar(&s.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&s.Password, "password", "", "Password")
	return cmd
}

func loginCommand(a *app) *cobra.Command {
	var creds model.Credentials
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in, answering the second factor when required",
		RunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if creds.Username, err = a.valueOrPrompt(creds.Username, "Username"); err != nil {
				return err
			}
			if creds.Password, err = a.valueOrPrompt(creds.Password, "Password"); err != nil {
				return err
			}

			res, err := a.client.Auth.Login(cmd.Context(), creds)
			if err != nil {
				return fmt.Errorf("login failed: %s", model.Message(err))
			}
			if res.TwoFactorRequired {
				a.printf("%s\n", res.Message)
				return a.answerChallenge(cmd.Context())
			}
			a.printf("Logged in as %s.\n", res.User.Username)
			return nil
		},
	}
	cmd.Flags().StringVar(&creds.Username, "username", "", "Username")
	cmd.Flags().StringVar(&creds.Password, "password", "", "Password")
	cmd.Flags().BoolVar(&creds.RememberMe, "remember", false, "Keep the session for longer")
	return cmd
}

type navigatorFunc func(path string)

func (f navigatorFunc) Navigate(path string) { f(path) }

// answerChallenge reads codes until the challenge succeeds or ends.
func (a *app) answerChallenge(ctx context.Context) error {
	ch := a.client.NewChallenge(navigatorFunc(func(path string) {
		a.logger.Debug("accountctl: challenge navigated", "path", path)
	}))
	defer ch.Close()

	if err := ch.Start(ctx); err != nil {
		return fmt.Errorf("2fa failed: %s", model.Message(err))
	}

	for {
		state := ch.Snapshot()
		switch state.Phase {
		case twofa.PhaseSuccess:
			return a.reportLogin()
		case twofa.PhaseExpired, twofa.PhaseAborted, twofa.PhaseClosed:
			return fmt.Errorf("2fa failed: %s", errMessage(state.Err, "verification ended"))
		}

		code, err := a.prompt(fmt.Sprintf("Code (%s left)", formatSeconds(state.SecondsRemaining)))
		if err != nil {
			return err
		}
		ch.Paste(code)
		err = ch.Submit(ctx)
		switch {
		case err == nil:
		case model.IsExpiry(err):
			return fmt.Errorf("2fa failed: %s", model.Message(err))
		default:
			a.printf("%s\n", model.Message(err))
		}
	}
}

func (a *app) reportLogin() error {
	user, err := a.requireLogin()
	if err != nil {
		return err
	}
	a.printf("Logged in as %s.\n", user.Username)
	return nil
}

func logoutCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "End the current session",
		RunE: func(cmd *cobra.Command, args []string) error {
			a.client.Auth.Logout(cmd.Context())
			a.printf("Logged out.\n")
			return nil
		},
	}
}

func whoamiCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the logged-in user",
		RunE: func(cmd *cobra.Command, args []string) error {
			user, err := a.requireLogin()
			if err != nil {
				return err
			}
			writeUser(a.out, user)
			return nil
		},
	}
}

func routeCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "route <path>",
		Short: "Show what the route gate decides for a path",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := a.client.Gate.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			state := a.client.Store.State()
			writeDecision(a.out, args[0], d)
			writeLinks(a.out, "Navigation", route.NavFor(state))
			if state.Status {
				writeLinks(a.out, "Menu", route.MenuFor(state.Role()))
			}
			a.printf("Logo: %s\n", route.LogoTarget(state))
			return nil
		},
	}
}

func sessionsCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List and revoke signed-in devices",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "list",
			Short: "List active sessions",
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.requireLogin(); err != nil {
					return err
				}
				list, err := a.client.Sessions.List(cmd.Context())
				if err != nil {
					return fmt.Errorf("failed to list sessions: %s", model.Message(err))
				}
				return writeSessions(a.out, list, a.now())
			},
		},
		&cobra.Command{
			Use:   "revoke <id>",
			Short: "Sign out one other device",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.requireLogin(); err != nil {
					return err
				}
				// the registry checks against the cached list
				if _, err := a.client.Sessions.List(cmd.Context()); err != nil {
					return fmt.Errorf("failed to list sessions: %s", model.Message(err))
				}
				if err := a.client.Sessions.Revoke(cmd.Context(), args[0]); err != nil {
					return fmt.Errorf("failed to revoke session: %s", model.Message(err))
				}
				a.printf("Session %s revoked.\n", args[0])
				return nil
			},
		},
		&cobra.Command{
			Use:   "revoke-all",
			Short: "Sign out every other device",
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.requireLogin(); err != nil {
					return err
				}
				if err := a.client.Sessions.RevokeAllOthers(cmd.Context()); err != nil {
					return fmt.Errorf("failed to revoke sessions: %s", model.Message(err))
				}
				a.printf("All other sessions revoked.\n")
				return nil
			},
		},
	)
	return cmd
}

func twoFactorCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "2fa",
		Short: "Manage two-factor authentication",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// cobra runs only the nearest persistent hook
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if _, err := a.requireLogin(); err != nil {
				return err
			}
			if _, err := a.client.Enrollment.Load(cmd.Context()); err != nil {
				return fmt.Errorf("failed to load 2fa status: %s", model.Message(err))
			}
			return nil
		},
	}

	var qrOut string
	enable := &cobra.Command{
		Use:   "enable",
		Short: "Generate a secret and confirm it with a code",
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.client.Enrollment.Snapshot().Enabled {
				return errors.New("two-factor authentication is already enabled")
			}
			secret, err := a.client.Enrollment.Generate(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to generate secret: %s", model.Message(err))
			}
			a.printf("Secret: %s\n", secret.Secret)
			if qrOut != "" {
				if err := writeQRCode(qrOut, secret.QRCode); err != nil {
					return err
				}
				a.printf("QR code written to %s\n", qrOut)
			}
			if err := a.client.Enrollment.BeginVerification(); err != nil {
				return err
			}
			code, err := a.prompt("Code from your authenticator")
			if err != nil {
				return err
			}
			a.client.Enrollment.Paste(code)
			if err := a.client.Enrollment.Enable(cmd.Context()); err != nil {
				return errors.New(model.Message(err))
			}
			a.printf("Two-factor authentication enabled.\n")
			return nil
		},
	}
	enable.Flags().StringVar(&qrOut, "qr-out", "", "Write the QR code PNG to this file")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show whether two-factor authentication is on",
			RunE: func(cmd *cobra.Command, args []string) error {
				a.printf("Two-factor authentication: %s\n", onOff(a.client.Enrollment.Snapshot().Enabled))
				return nil
			},
		},
		enable,
		&cobra.Command{
			Use:   "disable",
			Short: "Turn two-factor authentication off with a current code",
			RunE: func(cmd *cobra.Command, args []string) error {
				code, err := a.prompt("Current code")
				if err != nil {
					return err
				}
				a.client.Enrollment.Paste(code)
				if err := a.client.Enrollment.Disable(cmd.Context()); err != nil {
					return errors.New(model.Message(err))
				}
				a.printf("Two-factor authentication disabled.\n")
				return nil
			},
		},
	)
	return cmd
}

func profileCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Update the account profile",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "set-name <name>",
			Short: "Change the full name",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.requireLogin(); err != nil {
					return err
				}
				user, err := a.client.Auth.ChangeName(cmd.Context(), strings.Join(args, " "))
				if err != nil {
					return fmt.Errorf("failed to change name: %s", model.Message(err))
				}
				a.printf("Name changed to %s.\n", user.FullName)
				return nil
			},
		},
		&cobra.Command{
			Use:   "set-password",
			Short: "Change the password",
			RunE: func(cmd *cobra.Command, args []string) error {
				if _, err := a.requireLogin(); err != nil {
					return err
				}
				current, err := a.prompt("Current password")
				if err != nil {
					return err
				}
				next, err := a.prompt("New password")
				if err != nil {
					return err
				}
				confirm, err := a.prompt("Confirm new password")
				if err != nil {
					return err
				}
				if err := a.client.Auth.ChangePassword(cmd.Context(), current, next, confirm); err != nil {
					return fmt.Errorf("failed to change password: %s", model.Message(err))
				}
				a.printf("Password changed.\n")
				return nil
			},
		},
	)
	return cmd
}

// writeQRCode stores the PNG carried by a data URL.
func writeQRCode(path, dataURL string) error {
	_, payload, ok := strings.Cut(dataURL, ";base64,")
	if !ok {
		return errors.New("qr code is not a base64 data url")
	}
	png, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return fmt.Errorf("failed to decode qr code: %w", err)
	}
	if err := os.WriteFile(path, png, 0o600); err != nil {
		return fmt.Errorf("failed to write qr code: %w", err)
	}
	return nil
}

func errMessage(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return model.Message(err)
}

func onOff(v bool) string {
	if v {
		return "on"
	}
	return "off"
}

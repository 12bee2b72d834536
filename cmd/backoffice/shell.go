// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/olegiv/eventfx/internal/backoffice"
	"github.com/olegiv/eventfx/internal/config"
	"github.com/olegiv/eventfx/internal/model"
)

// authenticator is the login half of the catalog client.
type authenticator interface {
	Login(ctx context.Context, username, password string) (model.Principal, error)
	Logout(ctx context.Context) error
}

const helpText = `Commands:
  ls                         list the current level
  open <id>                  open a service or an extra
  back                       go up one level
  find [text]                filter the current list (blank clears)
  new <title> | <image> [| <viewId>]
                             create a service or an extra
  edit <id> <title> [| <image> [| <viewId>]]
                             edit a service or an extra
  rm [id]                    delete a service, an extra, or the open detail
  desc <text>                set the description of the open detail
  gallery add <url> | gallery rm <n>
  hl add <icon> | <title> | <desc> | hl rm <n>
  locale [code]              show or switch the content locale
  refresh                    reload the service list
  login | logout | help | quit`

// shell is the line-oriented backoffice.
type shell struct {
	ctx    context.Context
	cfg    *config.Backoffice
	auth   authenticator
	ctrl   *backoffice.Controller
	in     *bufio.Scanner
	out    io.Writer
	prompt bool
}

var errQuit = errors.New("quit")

func (s *shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *shell) run() error {
	if err := s.login(); err != nil {
		return err
	}
	s.reload()

	for {
		if s.prompt {
			s.printf("%s> ", s.location())
		}
		if !s.in.Scan() {
			return s.in.Err()
		}
		if err := s.exec(s.in.Text()); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			s.printf("error: %v\n", err)
		}
		if s.ctx.Err() != nil {
			return nil
		}
	}
}

func (s *shell) readLine(label string) string {
	s.printf("%s: ", label)
	if !s.in.Scan() {
		return ""
	}
	return strings.TrimSpace(s.in.Text())
}

func (s *shell) login() error {
	username, password := s.cfg.Username, s.cfg.Password
	if username == "" {
		username = s.readLine("username")
	}
	if password == "" {
		password = s.readLine("password")
	}
	p, err := s.auth.Login(s.ctx, username, password)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	s.printf("logged in as %s\n", p.Username)
	return nil
}

func (s *shell) reload() {
	if err := s.ctrl.RefreshServices(s.ctx); err != nil {
		s.printf("error: %v\n", err)
		return
	}
	if err := s.ctrl.PrefetchExtraCounts(s.ctx); err != nil {
		s.printf("warning: extra counts: %v\n", err)
	}
}

func (s *shell) location() string {
	sel := s.ctrl.Selection()
	loc := s.ctrl.Locale()
	switch sel.Level {
	case backoffice.Level2:
		if e, ok := s.ctrl.SelectedExtra(); ok {
			return fmt.Sprintf("[%s] %s", loc, e.ViewID)
		}
	case backoffice.Level1:
		return fmt.Sprintf("[%s] service %d", loc, sel.ServiceID)
	}
	return fmt.Sprintf("[%s] services", loc)
}

// splitArgs splits "a | b | c" into trimmed fields.
func splitArgs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func field(parts []string, i int) string {
	if i < len(parts) {
		return parts[i]
	}
	return ""
}

// cutID splits a leading numeric id from the rest of a command line.
func cutID(s string) (int64, string, error) {
	head, rest, _ := strings.Cut(strings.TrimSpace(s), " ")
	id, err := strconv.ParseInt(head, 10, 64)
	if err != nil || id <= 0 {
		return 0, "", fmt.Errorf("expected an id, got %q", head)
	}
	return id, strings.TrimSpace(rest), nil
}

func (s *shell) exec(line string) error {
	cmd, arg, _ := strings.Cut(strings.TrimSpace(line), " ")
	arg = strings.TrimSpace(arg)
	level := s.ctrl.Selection().Level

	switch cmd {
	case "":
		return nil
	case "help", "?":
		s.printf("%s\n", helpText)
	case "quit", "exit":
		return errQuit
	case "login":
		return s.login()
	case "logout":
		return s.auth.Logout(s.ctx)
	case "ls":
		s.list()
	case "refresh":
		s.reload()
	case "back", "..":
		s.ctrl.Back()
	case "find":
		s.ctrl.SetQueryNow(level, arg)
		s.list()
	case "locale":
		if arg == "" {
			s.printf("%s\n", s.ctrl.Locale())
			return nil
		}
		return s.ctrl.SetLocale(arg)
	case "open":
		id, _, err := cutID(arg)
		if err != nil {
			return err
		}
		return s.open(level, id)
	case "new":
		return s.create(level, splitArgs(arg))
	case "edit":
		id, rest, err := cutID(arg)
		if err != nil {
			return err
		}
		return s.edit(level, id, splitArgs(rest))
	case "rm":
		return s.remove(level, arg)
	case "desc", "gallery", "hl":
		if level != backoffice.Level2 {
			return errors.New("open an extra first")
		}
		return s.editDetail(cmd, arg)
	default:
		return fmt.Errorf("unknown command %q, try help", cmd)
	}
	return nil
}

func (s *shell) open(level backoffice.Level, id int64) error {
	switch level {
	case backoffice.Level0:
		return s.ctrl.SelectService(s.ctx, id)
	case backoffice.Level1:
		return s.ctrl.SelectExtra(s.ctx, id)
	default:
		return errors.New("already at a detail, use back")
	}
}

// report prints an outcome and reports whether it succeeded.
func report[T any](s *shell, out backoffice.Outcome[T], done string) bool {
	if out.OK {
		s.printf("%s\n", done)
		return true
	}
	s.printf("%s: %s\n", out.Kind, out.Message)
	if out.Kind == backoffice.KindUnauthorized {
		s.printf("use login to sign in again\n")
	}
	return false
}

func (s *shell) create(level backoffice.Level, parts []string) error {
	switch level {
	case backoffice.Level0:
		out := s.ctrl.CreateService(s.ctx, model.ServiceInput{Title: field(parts, 0), ImageURL: field(parts, 1)})
		report(s, out, fmt.Sprintf("created service %d", out.Entity.ID))
	case backoffice.Level1:
		out := s.ctrl.CreateExtra(s.ctx, model.ExtraInput{
			Title:    field(parts, 0),
			ImageURL: field(parts, 1),
			ViewID:   field(parts, 2),
		})
		if report(s, out, fmt.Sprintf("created extra %d (%s)", out.Entity.ID, out.Entity.ViewID)) {
			s.showDetail()
		}
	default:
		return errors.New("nothing to create here, use back")
	}
	return nil
}

func (s *shell) edit(level backoffice.Level, id int64, parts []string) error {
	switch level {
	case backoffice.Level0:
		out := s.ctrl.UpdateService(s.ctx, id, model.ServiceInput{Title: field(parts, 0), ImageURL: field(parts, 1)})
		report(s, out, "service updated")
	case backoffice.Level1:
		out := s.ctrl.UpdateExtra(s.ctx, id, model.ExtraInput{
			Title:    field(parts, 0),
			ImageURL: field(parts, 1),
			ViewID:   field(parts, 2),
		})
		report(s, out, fmt.Sprintf("extra updated (%s)", out.Entity.ViewID))
	default:
		return errors.New("use desc, gallery or hl to edit a detail")
	}
	return nil
}

func (s *shell) remove(level backoffice.Level, arg string) error {
	if level == backoffice.Level2 && arg == "" {
		report(s, s.ctrl.DeleteDetail(s.ctx, ""), "detail deleted")
		return nil
	}
	id, _, err := cutID(arg)
	if err != nil {
		return err
	}
	switch level {
	case backoffice.Level0:
		report(s, s.ctrl.DeleteService(s.ctx, id), "service deleted with its extras")
	case backoffice.Level1:
		report(s, s.ctrl.DeleteExtra(s.ctx, id), "extra deleted")
	default:
		return errors.New("rm takes no id at a detail")
	}
	return nil
}

func (s *shell) editDetail(cmd, arg string) error {
	form, ok := s.ctrl.DetailForm()
	if !ok {
		return errors.New("no extra selected")
	}

	sub, rest, _ := strings.Cut(arg, " ")
	rest = strings.TrimSpace(rest)
	switch {
	case cmd == "desc":
		form.Description = arg
	case sub == "add" && cmd == "gallery":
		form.GalleryURLs = append(form.GalleryURLs, rest)
	case sub == "add" && cmd == "hl":
		form.Highlights = append(form.Highlights, model.ParseHighlight(rest))
	case sub == "rm":
		n, err := strconv.Atoi(rest)
		if err != nil || n < 1 {
			return fmt.Errorf("expected a position, got %q", rest)
		}
		if cmd == "gallery" {
			if n > len(form.GalleryURLs) {
				return fmt.Errorf("no gallery item %d", n)
			}
			form.GalleryURLs = append(form.GalleryURLs[:n-1], form.GalleryURLs[n:]...)
		} else {
			if n > len(form.Highlights) {
				return fmt.Errorf("no highlight %d", n)
			}
			form.Highlights = append(form.Highlights[:n-1], form.Highlights[n:]...)
		}
	default:
		return fmt.Errorf("usage: %s add <value> | %s rm <n>", cmd, cmd)
	}

	if report(s, s.ctrl.SaveDetail(s.ctx, form), "detail saved") {
		s.showDetail()
	}
	return nil
}

func (s *shell) list() {
	switch s.ctrl.Selection().Level {
	case backoffice.Level0:
		services, state := s.ctrl.Services()
		if state != backoffice.Loaded {
			s.printf("services %s\n", state)
			return
		}
		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tTITLE\tEXTRAS\tIMAGE")
		for _, svc := range services {
			count := "?"
			if n, ok := s.ctrl.ExtraCount(svc.ID); ok {
				count = strconv.Itoa(n)
			}
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", svc.ID, svc.Title, count, svc.ImageURL)
		}
		_ = tw.Flush()
	case backoffice.Level1:
		extras, state := s.ctrl.Extras()
		if state != backoffice.Loaded {
			s.printf("extras %s\n", state)
			return
		}
		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		_, _ = fmt.Fprintln(tw, "ID\tTITLE\tVIEW ID\tACTIVE")
		for _, e := range extras {
			_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%t\n", e.ID, e.Title, e.ViewID, e.IsActive)
		}
		_ = tw.Flush()
	default:
		s.showDetail()
	}
}

func (s *shell) showDetail() {
	_, state := s.ctrl.Detail()
	form, ok := s.ctrl.DetailForm()
	if !ok {
		return
	}
	if state != backoffice.Loaded {
		s.printf("detail %s\n", state)
		return
	}
	s.printf("view id:     %s (%s)\n", form.ViewID, form.Locale)
	s.printf("description: %s\n", form.Description)
	for i, u := range form.GalleryURLs {
		s.printf("gallery %d:   %s\n", i+1, u)
	}
	for i, h := range form.Highlights {
		s.printf("highlight %d: %s\n", i+1, h.String())
	}
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"skillpath_quiz/internal/content"
	"skillpath_quiz/internal/core"
	"skillpath_quiz/internal/quiz"
	"skillpath_quiz/internal/storage"
)

var (
	playUser   string
	playLang   string
	playGender string
)

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Take the quiz in the terminal",
	Long: `Runs one quiz over stdin and stdout with in-memory stores. Answer with the
option number or its id; "q" quits.`,
	Args: cobra.NoArgs,
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVar(&playUser, "user", "terminal", "user id for the session")
	playCmd.Flags().StringVar(&playLang, "lang", "", "content language (default: catalog default)")
	playCmd.Flags().StringVar(&playGender, "gender", "male", "gender used to resolve text (male or female)")
}

func runPlay(cmd *cobra.Command, args []string) error {
	cfg, err := setup()
	if err != nil {
		return err
	}
	gender, err := content.ParseGender(playGender)
	if err != nil {
		return err
	}
	store, err := loadContent(cmd.Context(), cfg.Content)
	if err != nil {
		return err
	}
	svc := quiz.NewService(core.NewEngine(store),
		storage.NewMemoryProgressStore(), storage.NewMemoryResultStore(), storage.NewKeyedLocker())
	return play(cmd.Context(), svc, cmd.InOrStdin(), cmd.OutOrStdout(), playUser, playLang, gender)
}

// play drives one quiz from in to out until it finishes or the input ends.
func play(ctx context.Context, svc *quiz.Service, in io.Reader, out io.Writer, userID, lang string, gender content.Gender) error {
	prompt, err := svc.StartQuiz(ctx, userID, lang, gender)
	if err != nil {
		return err
	}

	lines := bufio.NewScanner(in)
	for {
		printPrompt(out, prompt)
		fmt.Fprint(out, "> ")
		if !lines.Scan() {
			fmt.Fprintln(out)
			return lines.Err()
		}
		answer := strings.TrimSpace(lines.Text())
		if answer == "q" {
			return svc.Cancel(ctx, userID)
		}

		reply, err := svc.SubmitChoice(ctx, userID, core.Choice{Branch: prompt.Branch, SceneID: prompt.SceneID, OptionID: optionFor(prompt, answer)})
		var reprompt *quiz.RepromptError
		if errors.As(err, &reprompt) {
			fmt.Fprintln(out, "Please pick one of the listed options.")
			prompt = reprompt.Prompt
			continue
		}
		if err != nil {
			return err
		}

		if reply.Feedback != "" {
			fmt.Fprintf(out, "\n%s\n", reply.Feedback)
		}
		if reply.Result != nil {
			if reply.Prompt != nil {
				printPrompt(out, *reply.Prompt)
			}
			printResult(out, *reply.Result)
			return nil
		}
		prompt = *reply.Prompt
	}
}

// optionFor maps a typed answer to an option id. Numbers pick by position
// unless they are themselves an offered id.
func optionFor(p core.Prompt, answer string) string {
	ids := make([]string, len(p.Options))
	for i, opt := range p.Options {
		ids[i] = opt.ID
	}
	if slices.Contains(ids, answer) {
		return answer
	}
	if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(ids) {
		return ids[n-1]
	}
	return answer
}

func printPrompt(out io.Writer, p core.Prompt) {
	fmt.Fprintf(out, "\n[%d/%d] %s\n%s\n", p.Progress.Current, p.Progress.Total, p.Title, p.Text)
	for i, opt := range p.Options {
		fmt.Fprintf(out, "  %d. %s\n", i+1, opt.Text)
	}
}

func printResult(out io.Writer, r core.Result) {
	fmt.Fprintf(out, "\nYour profile: %s (%d points)\n", r.Profile, r.Score)
	profiles := make([]string, 0, len(r.Scores))
	for name := range r.Scores {
		profiles = append(profiles, name)
	}
	slices.SortFunc(profiles, func(a, b string) int {
		if d := r.Scores[b] - r.Scores[a]; d != 0 {
			return d
		}
		return strings.Compare(a, b)
	})
	for _, name := range profiles {
		fmt.Fprintf(out, "  %-28s %d\n", name, r.Scores[name])
	}
}

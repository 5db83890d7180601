package main

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"socialstorm/internal/matcher"
	"socialstorm/internal/subjects"
)

// scriptScene is one parsed line of a script file.
type scriptScene struct {
	subject string
	text    string
}

func newMatchCommand(cmdCtx *commandContext) *cobra.Command {
	var topic string
	var workDir string
	var forced []string
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "match <script-file>",
		Short: "Resolve every scene of a script to a clip",
		Long: "Match reads a script file with one scene per line and resolves each\n" +
			"scene to a video clip, a synthesized image clip, or a caption card\n" +
			"directive. A line may use the form \"subject | narration\" to search\n" +
			"for a different visual than the spoken text.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := cmdCtx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := cmdCtx.ensureLogger()
			if err != nil {
				return err
			}

			scenes, err := readScript(args[0])
			if err != nil {
				return err
			}
			if len(scenes) == 0 {
				return errors.New("script has no scenes")
			}
			if strings.TrimSpace(topic) == "" {
				return errors.New("--topic is required")
			}

			forcedByScene, err := parseForcedLocators(forced)
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.WorkDir, "match.lock"))
			ok, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire work dir lock: %w", err)
			}
			if !ok {
				return errors.New("another match run is already using this work dir")
			}
			defer lock.Unlock()

			eng, err := buildEngine(cfg, logger)
			if err != nil {
				return err
			}
			defer eng.Close()

			// A run where every scene is forced never touches the model;
			// anything else should fail fast on a bad key or model name.
			if len(forcedByScene) < len(scenes) {
				if err := eng.llm.HealthCheck(cmd.Context()); err != nil {
					return fmt.Errorf("llm health check: %w", err)
				}
			}

			job := matcher.NewJobContext()
			if eng.store != nil {
				if stems, err := eng.store.RecentStems(cmd.Context(), 50); err == nil {
					job.SeedUsed(stems)
				}
			}

			if workDir == "" {
				workDir = filepath.Join(cfg.Paths.WorkDir, "job_"+job.ID)
			}
			if err := os.MkdirAll(workDir, 0o755); err != nil {
				return fmt.Errorf("create work dir: %w", err)
			}

			resolutions := make([]matcher.Resolution, 0, len(scenes))
			for i, scene := range scenes {
				req := matcher.SceneRequest{
					SceneIndex:     i,
					Subject:        subjects.Text(scene.subject),
					SceneText:      scene.text,
					MainTopic:      topic,
					FirstSceneText: scenes[0].text,
					IsAnchorScene:  i == 0,
					ForcedLocator:  forcedByScene[i],
					WorkDir:        workDir,
				}
				resolutions = append(resolutions, eng.orchestrator.Resolve(cmd.Context(), job, req))
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(resolutions)
			}
			fmt.Fprintln(out, renderResolutions(resolutions))
			fmt.Fprintf(out, "Job %s: %d/%d scenes resolved\n", job.ID, countResolved(resolutions), len(resolutions))
			return nil
		},
	}

	cmd.Flags().StringVarP(&topic, "topic", "t", "", "Overall video topic used as the anchor subject")
	cmd.Flags().StringVarP(&workDir, "workdir", "w", "", "Directory for downloaded and synthesized clips")
	cmd.Flags().StringArrayVar(&forced, "force", nil, "Force a scene's clip as INDEX=LOCATOR (repeatable)")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit resolutions as JSON")
	return cmd
}

func readScript(path string) ([]scriptScene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	var scenes []scriptScene
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		subject, text := line, line
		if before, after, ok := strings.Cut(line, "|"); ok {
			subject = strings.TrimSpace(before)
			text = strings.TrimSpace(after)
		}
		scenes = append(scenes, scriptScene{subject: subject, text: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read script: %w", err)
	}
	return scenes, nil
}

func parseForcedLocators(entries []string) (map[int]string, error) {
	forced := make(map[int]string, len(entries))
	for _, entry := range entries {
		idx, locator, ok := strings.Cut(entry, "=")
		if !ok {
			return nil, fmt.Errorf("invalid --force value %q (want INDEX=LOCATOR)", entry)
		}
		sceneIndex, err := strconv.Atoi(strings.TrimSpace(idx))
		if err != nil || sceneIndex < 0 {
			return nil, fmt.Errorf("invalid --force scene index %q", idx)
		}
		forced[sceneIndex] = strings.TrimSpace(locator)
	}
	return forced, nil
}

func countResolved(resolutions []matcher.Resolution) int {
	count := 0
	for _, res := range resolutions {
		if res.Resolved() {
			count++
		}
	}
	return count
}

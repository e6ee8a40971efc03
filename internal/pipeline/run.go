package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/reelmaker/reelmaker-backend/internal/config"
	"github.com/reelmaker/reelmaker-backend/internal/media"
	"github.com/reelmaker/reelmaker-backend/internal/models"
	"github.com/reelmaker/reelmaker-backend/internal/queue"
	"github.com/reelmaker/reelmaker-backend/internal/stt"
	"github.com/reelmaker/reelmaker-backend/pkg/logger"
)

// ObjectStore moves files between the worker and object storage. Nil
// when the deployment runs on shared local disk.
type ObjectStore interface {
	Download(ctx context.Context, bucket, key, destPath string) error
	Upload(ctx context.Context, localPath, bucket, key string) error
}

// Runner executes one claimed job end to end: probe, transcribe,
// analyze, render, register outputs.
type Runner struct {
	cfg       *config.Config
	repo      queue.Repository
	redisRepo queue.RedisRepository
	media     *media.Toolbox
	stt       stt.Transcriber
	selector  *Selector
	narrator  *Narrator
	renderer  *Renderer
	store     ObjectStore
	logger    logger.Logger
}

func NewRunner(
	cfg *config.Config,
	repo queue.Repository,
	redisRepo queue.RedisRepository,
	toolbox *media.Toolbox,
	transcriber stt.Transcriber,
	selector *Selector,
	narrator *Narrator,
	renderer *Renderer,
	store ObjectStore,
	log logger.Logger,
) *Runner {
	return &Runner{
		cfg:       cfg,
		repo:      repo,
		redisRepo: redisRepo,
		media:     toolbox,
		stt:       transcriber,
		selector:  selector,
		narrator:  narrator,
		renderer:  renderer,
		store:     store,
		logger:    log,
	}
}

func (r *Runner) report(ctx context.Context, job *models.Job, status models.JobStatus, progress float64) {
	if err := r.repo.UpdateJobProgress(ctx, job.JobID, progress); err != nil {
		r.logger.Warnf("failed to persist progress for job %s: %v", job.JobID, err)
	}
	if err := r.redisRepo.SetJobProgress(ctx, job.JobID.String(), status, progress); err != nil {
		r.logger.Warnf("failed to mirror progress for job %s: %v", job.JobID, err)
	}
	event := &models.JobEvent{
		JobID:     job.JobID.String(),
		ProjectID: job.ProjectID.String(),
		Status:    status,
		Progress:  progress,
	}
	if err := r.redisRepo.PublishJobEvent(ctx, event); err != nil {
		r.logger.Warnf("failed to publish event for job %s: %v", job.JobID, err)
	}
}

// ProcessJob runs a claimed job to completion or to awaiting_selection.
// The caller owns the failed transition: any returned error means the
// job did not finish.
func (r *Runner) ProcessJob(ctx context.Context, job *models.Job) error {
	project, err := r.repo.GetProjectByID(ctx, job.ProjectID)
	if err != nil {
		return fmt.Errorf("failed to load project: %w", err)
	}
	video, err := r.repo.GetSourceVideoByID(ctx, job.VideoID)
	if err != nil {
		return fmt.Errorf("failed to load source video: %w", err)
	}

	var settings models.RenderSettings
	if len(project.Settings) > 0 {
		if err = json.Unmarshal(project.Settings, &settings); err != nil {
			return fmt.Errorf("failed to parse project settings: %w", err)
		}
	}
	opts := NormalizeOptions(job.Mode, settings)

	workDir := filepath.Join(r.cfg.Worker.WorkDir, job.JobID.String())
	if err = os.MkdirAll(workDir, 0o755); err != nil {
		return fmt.Errorf("failed to create work dir: %w", err)
	}
	if !r.cfg.Worker.KeepWorkDirs {
		defer os.RemoveAll(workDir)
	}

	srcPath, err := r.fetchSource(ctx, video, workDir)
	if err != nil {
		return err
	}
	r.report(ctx, job, models.JobStatusRunning, 0.05)

	duration, err := r.media.ProbeDuration(ctx, srcPath)
	if err != nil {
		return fmt.Errorf("failed to probe duration: %w", err)
	}
	audioInfo, err := r.media.ProbeAudioInfo(ctx, srcPath)
	if err != nil {
		return fmt.Errorf("failed to probe audio: %w", err)
	}
	if !audioInfo.HasAudio {
		return fmt.Errorf("source video has no audio stream")
	}
	if err = r.repo.UpdateSourceVideoProbe(ctx, video.VideoID, duration, audioInfo.Codec); err != nil {
		r.logger.Warnf("failed to store probe result for video %s: %v", video.VideoID, err)
	}
	r.report(ctx, job, models.JobStatusRunning, 0.1)

	wavPath := filepath.Join(workDir, "audio.wav")
	if err = r.media.ExtractAudioPCM(ctx, srcPath, wavPath); err != nil {
		return fmt.Errorf("failed to extract audio: %w", err)
	}
	r.report(ctx, job, models.JobStatusRunning, 0.2)

	srtPath, err := r.stt.TranscribeToSRT(ctx, wavPath, filepath.Join(workDir, "transcript"))
	if err != nil {
		return fmt.Errorf("failed to transcribe: %w", err)
	}
	raw, err := os.ReadFile(srtPath)
	if err != nil {
		return fmt.Errorf("failed to read transcript: %w", err)
	}
	items := ParseSRT(string(raw))
	if len(items) == 0 {
		return fmt.Errorf("transcript is empty")
	}
	r.report(ctx, job, models.JobStatusRunning, 0.25)

	chunks := r.buildChunks(items, opts)
	r.report(ctx, job, models.JobStatusRunning, 0.3)

	env := &jobEnv{
		job:      job,
		project:  project,
		video:    video,
		opts:     opts,
		workDir:  workDir,
		srcPath:  srcPath,
		items:    items,
		chunks:   chunks,
		duration: duration,
		audio:    audioInfo,
	}

	switch job.Mode {
	case models.ModeBestScenes, models.ModeBestScenesSplit:
		err = r.runBestScenes(ctx, env)
	case models.ModeSummaryHybrid:
		var paused bool
		paused, err = r.runSummaryHybrid(ctx, env)
		if err == nil && paused {
			return nil
		}
	case models.ModeStoryOnly:
		err = r.runStoryOnly(ctx, env)
	default:
		err = fmt.Errorf("unsupported mode %q", job.Mode)
	}
	if err != nil {
		return err
	}

	if err = r.repo.UpdateJobStatus(ctx, job.JobID, models.JobStatusCompleted, ""); err != nil {
		return fmt.Errorf("failed to mark job completed: %w", err)
	}
	if err = r.repo.RecomputeProjectProgress(ctx, job.ProjectID); err != nil {
		r.logger.Warnf("failed to recompute project progress for %s: %v", job.ProjectID, err)
	}
	r.report(ctx, job, models.JobStatusCompleted, 1.0)
	return nil
}

// jobEnv bundles everything the mode handlers share.
type jobEnv struct {
	job      *models.Job
	project  *models.Project
	video    *models.SourceVideo
	opts     Options
	workDir  string
	srcPath  string
	items    []models.TranscriptItem
	chunks   []models.Chunk
	duration float64
	audio    media.AudioInfo
}

func (r *Runner) fetchSource(ctx context.Context, video *models.SourceVideo, workDir string) (string, error) {
	if r.store == nil {
		path := filepath.Join(r.cfg.Media.UploadDir, video.StorageKey)
		if _, err := os.Stat(path); err != nil {
			return "", fmt.Errorf("source video not found: %w", err)
		}
		return path, nil
	}
	dest := filepath.Join(workDir, "source"+filepath.Ext(video.FileName))
	if err := r.store.Download(ctx, r.cfg.S3.UploadBucket, video.StorageKey, dest); err != nil {
		return "", fmt.Errorf("failed to download source video: %w", err)
	}
	return dest, nil
}

func (r *Runner) buildChunks(items []models.TranscriptItem, opts Options) []models.Chunk {
	budget := r.cfg.LLM.MaxInputTokens - r.cfg.LLM.PromptOverheadTokens
	if opts.Mode == models.ModeSummaryHybrid || opts.Mode == models.ModeStoryOnly {
		if r.cfg.LLM.SummaryMaxInputTokens > 0 {
			budget = r.cfg.LLM.SummaryMaxInputTokens - r.cfg.LLM.PromptOverheadTokens
		}
	}
	chunks := ChunkByTokenBudget(items, budget)
	if opts.ContextOverlap > 0 {
		chunks = WithContextOverlap(chunks, opts.ContextOverlap)
	}
	return chunks
}

func (r *Runner) runBestScenes(ctx context.Context, env *jobEnv) error {
	onChunk := func(done, total int) {
		r.report(ctx, env.job, models.JobStatusRunning, 0.3+0.45*float64(done)/float64(total))
	}
	candidates, err := r.selector.AnalyzeChunks(ctx, env.job.ProjectID, env.chunks, env.opts, env.duration, onChunk)
	if err != nil {
		return fmt.Errorf("failed to analyze chunks: %w", err)
	}

	scenes := SelectWithLadder(candidates, env.opts)
	scenes = ApplyScenePadding(scenes, env.opts, env.duration)
	if len(scenes) == 0 {
		r.logger.Warnf("job %s: selection came up empty, retrying with heuristic fallback", env.job.JobID)
		scenes = ApplyScenePadding(HeuristicFallback(env.chunks, env.opts, env.duration), env.opts, env.duration)
	}
	if len(scenes) == 0 {
		return fmt.Errorf("could not detect best scenes from transcript even after fallback, try lowering score_threshold or min_scene_sec")
	}
	r.report(ctx, env.job, models.JobStatusRunning, 0.8)

	overlay := r.renderer.BuildOverlayConfig(ctx, env.opts, env.project.ChannelName)
	audioMode := PickAudioMode(env.audio, r.cfg.Media.PreferAudioCopy)

	clips := make([]string, 0, len(scenes))
	for i, scene := range scenes {
		clip := filepath.Join(env.workDir, fmt.Sprintf("clip%02d.mp4", i+1))
		if err = r.renderer.CutScene(ctx, env.srcPath, clip, scene, overlay, audioMode); err != nil {
			return fmt.Errorf("failed to cut scene %d: %w", i+1, err)
		}
		clips = append(clips, clip)
	}
	r.report(ctx, env.job, models.JobStatusRunning, 0.92)

	if env.opts.Mode == models.ModeBestScenesSplit {
		for i, clip := range clips {
			final := clip
			if env.opts.BurnSubtitles {
				srt := BuildSceneSRT(env.items, scenes[i].StartSec, scenes[i].EndSec)
				final, err = r.burnClip(ctx, env.workDir, clip, srt, fmt.Sprintf("sub%02d", i+1))
				if err != nil {
					return err
				}
			}
			if err = r.registerOutput(ctx, env, final, models.OutputKindScene, i+1, scenes[i].Duration()); err != nil {
				return err
			}
		}
		return nil
	}

	merged := filepath.Join(env.workDir, "highlight.mp4")
	if err = r.renderer.ConcatClips(ctx, clips, merged); err != nil {
		return fmt.Errorf("failed to concatenate clips: %w", err)
	}
	final := merged
	if env.opts.BurnSubtitles {
		srt := BuildMergedSRT(env.items, scenes)
		final, err = r.burnClip(ctx, env.workDir, merged, srt, "highlight_sub")
		if err != nil {
			return err
		}
	}
	var total float64
	for _, s := range scenes {
		total += s.Duration()
	}
	return r.registerOutput(ctx, env, final, models.OutputKindHighlight, 0, total)
}

// runSummaryHybrid plans segments and pauses at awaiting_selection on
// the first pass. Once the job carries a selection it renders the
// narrated summary. Returns paused=true when the job stopped to wait.
func (r *Runner) runSummaryHybrid(ctx context.Context, env *jobEnv) (bool, error) {
	if len(env.job.Selection) == 0 {
		plan := r.narrator.PlanStory(ctx, env.chunks, env.opts)
		plan = clampSegments(plan, env.duration)
		if len(plan) == 0 {
			return false, fmt.Errorf("no summary segments planned")
		}
		proposal := models.SelectionInput{Segments: make([]models.SelectedSegment, 0, len(plan))}
		for _, seg := range plan {
			proposal.Segments = append(proposal.Segments, models.SelectedSegment{
				StartSec:  seg.StartSec,
				EndSec:    seg.EndSec,
				Narration: seg.Narration,
			})
		}
		payload, err := json.Marshal(proposal)
		if err != nil {
			return false, fmt.Errorf("failed to marshal segment proposal: %w", err)
		}
		if err = r.repo.UpdateJobSelection(ctx, env.job.JobID, payload); err != nil {
			return false, fmt.Errorf("failed to store segment proposal: %w", err)
		}
		if err = r.repo.UpdateJobStatus(ctx, env.job.JobID, models.JobStatusAwaitingSelection, ""); err != nil {
			return false, fmt.Errorf("failed to pause job: %w", err)
		}
		r.report(ctx, env.job, models.JobStatusAwaitingSelection, 0.5)
		return true, nil
	}

	var selection models.SelectionInput
	if err := json.Unmarshal(env.job.Selection, &selection); err != nil {
		return false, fmt.Errorf("failed to parse selection: %w", err)
	}
	if len(selection.Segments) == 0 {
		return false, fmt.Errorf("selection has no segments")
	}
	segments := make([]models.StorySegment, 0, len(selection.Segments))
	for _, s := range selection.Segments {
		segments = append(segments, models.StorySegment{
			StartSec:  s.StartSec,
			EndSec:    s.EndSec,
			Narration: s.Narration,
		})
	}
	segments = clampSegments(segments, env.duration)
	if len(segments) == 0 {
		return false, fmt.Errorf("selection has no usable segments")
	}
	return false, r.renderNarrated(ctx, env, segments, models.OutputKindSummary)
}

func (r *Runner) runStoryOnly(ctx context.Context, env *jobEnv) error {
	segments := r.narrator.PlanStory(ctx, env.chunks, env.opts)
	segments = clampSegments(segments, env.duration)
	if len(segments) == 0 {
		return fmt.Errorf("no story segments planned")
	}
	return r.renderNarrated(ctx, env, segments, models.OutputKindStory)
}

// renderNarrated cuts each segment, fits its narration and mixes it in,
// then concatenates everything into one output.
func (r *Runner) renderNarrated(ctx context.Context, env *jobEnv, segments []models.StorySegment, kind models.OutputKind) error {
	overlay := r.renderer.BuildOverlayConfig(ctx, env.opts, env.project.ChannelName)
	audioMode := PickAudioMode(env.audio, r.cfg.Media.PreferAudioCopy)

	memory := &StoryMemory{}
	clips := make([]string, 0, len(segments))
	for i, seg := range segments {
		scene := models.SceneCandidate{StartSec: seg.StartSec, EndSec: seg.EndSec}
		cut := filepath.Join(env.workDir, fmt.Sprintf("seg%02d.mp4", i+1))
		if err := r.renderer.CutScene(ctx, env.srcPath, cut, scene, overlay, audioMode); err != nil {
			return fmt.Errorf("failed to cut segment %d: %w", i+1, err)
		}

		narration := seg.Narration
		if narration == "" {
			narration = r.narrator.NarrateScene(ctx, scene, env.items, memory)
		} else {
			memory.Append(narration)
		}

		clip := cut
		if narration != "" {
			ttsPath, err := r.narrator.Synthesize(ctx, narration, scene.Duration(), env.workDir, fmt.Sprintf("tts%02d", i+1), env.opts)
			if err != nil {
				r.logger.Warnf("narration synthesis failed for segment %d, keeping original audio: %v", i+1, err)
			} else {
				mixed := filepath.Join(env.workDir, fmt.Sprintf("seg%02d_mix.mp4", i+1))
				if env.opts.NarrationMix == "replace" {
					err = r.narrator.MuxReplace(ctx, cut, ttsPath, mixed)
				} else {
					err = r.narrator.MixDuck(ctx, cut, ttsPath, mixed, env.opts)
				}
				if err != nil {
					return fmt.Errorf("failed to mix narration for segment %d: %w", i+1, err)
				}
				clip = mixed
			}
		}
		clips = append(clips, clip)
		r.report(ctx, env.job, models.JobStatusRunning, 0.3+0.45*float64(i+1)/float64(len(segments)))
	}
	r.report(ctx, env.job, models.JobStatusRunning, 0.8)

	merged := filepath.Join(env.workDir, string(kind)+".mp4")
	if err := r.renderer.ConcatClips(ctx, clips, merged); err != nil {
		return fmt.Errorf("failed to concatenate segments: %w", err)
	}
	r.report(ctx, env.job, models.JobStatusRunning, 0.92)

	var total float64
	for _, seg := range segments {
		total += seg.EndSec - seg.StartSec
	}
	return r.registerOutput(ctx, env, merged, kind, 0, total)
}

func (r *Runner) burnClip(ctx context.Context, workDir, clip, srt, name string) (string, error) {
	srtPath := filepath.Join(workDir, name+".srt")
	if err := os.WriteFile(srtPath, []byte(srt), 0o644); err != nil {
		return "", fmt.Errorf("failed to write subtitle file: %w", err)
	}
	out := filepath.Join(workDir, name+".mp4")
	if err := r.renderer.BurnSubtitles(ctx, clip, srtPath, out); err != nil {
		return "", fmt.Errorf("failed to burn subtitles: %w", err)
	}
	return out, nil
}

// registerOutput moves or uploads the rendered file and records it.
func (r *Runner) registerOutput(ctx context.Context, env *jobEnv, localPath string, kind models.OutputKind, sceneIndex int, duration float64) error {
	fileName := MakeOutputFilename(env.job.ProjectID, kind, sceneIndex)
	storageKey := filepath.ToSlash(filepath.Join(env.job.ProjectID.String(), fileName))

	if r.store != nil {
		if err := r.store.Upload(ctx, localPath, r.cfg.S3.OutputBucket, storageKey); err != nil {
			return fmt.Errorf("failed to upload output: %w", err)
		}
	} else {
		dest := filepath.Join(r.cfg.Media.OutputDir, storageKey)
		if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
			return fmt.Errorf("failed to create output dir: %w", err)
		}
		if err := copyFile(localPath, dest); err != nil {
			return fmt.Errorf("failed to copy output: %w", err)
		}
	}

	output := &models.OutputVideo{
		ProjectID:  env.job.ProjectID,
		JobID:      env.job.JobID,
		Kind:       kind,
		FileName:   fileName,
		StorageKey: storageKey,
		Duration:   duration,
		SceneIndex: sceneIndex,
	}
	if _, err := r.repo.InsertOutput(ctx, output); err != nil {
		return fmt.Errorf("failed to record output: %w", err)
	}
	return nil
}

// clampSegments normalizes narrated segments into the allowed length
// band and drops anything that collapses.
func clampSegments(segments []models.StorySegment, totalDuration float64) []models.StorySegment {
	out := make([]models.StorySegment, 0, len(segments))
	for _, seg := range segments {
		if seg.StartSec < 0 {
			seg.StartSec = 0
		}
		if seg.EndSec > totalDuration {
			seg.EndSec = totalDuration
		}
		span := seg.EndSec - seg.StartSec
		if span > summaryMaxSegSec {
			seg.EndSec = seg.StartSec + summaryMaxSegSec
		} else if span < summaryMinSegSec {
			seg.EndSec = seg.StartSec + summaryMinSegSec
			if seg.EndSec > totalDuration {
				seg.EndSec = totalDuration
			}
		}
		if seg.EndSec <= seg.StartSec+0.5 {
			continue
		}
		out = append(out, seg)
	}
	return out
}

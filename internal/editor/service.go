// Package editor exposes the editing session: one project guarded by a
// mutex, with undoable edits, playhead queries, and export orchestration.
package editor

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/alexanderwanyoike/forgecut/internal/config"
	"github.com/alexanderwanyoike/forgecut/internal/history"
	"github.com/alexanderwanyoike/forgecut/internal/logging"
	"github.com/alexanderwanyoike/forgecut/internal/render"
	"github.com/alexanderwanyoike/forgecut/internal/timeline"
)

// Service owns a project and serializes all access to it. Every public
// method takes the lock, so callers from any goroutine see a consistent
// timeline.
type Service struct {
	mu      sync.Mutex
	project *timeline.Project
	history *history.History
	runner  *render.Runner
	logger  zerolog.Logger
}

// New creates a service around a fresh project. runner may be nil when no
// ffmpeg work is needed (pure timeline manipulation and tests).
func New(logger zerolog.Logger, cfg *config.Config, runner *render.Runner, project *timeline.Project) *Service {
	return &Service{
		project: project,
		history: history.New(cfg.HistoryDepth),
		runner:  runner,
		logger:  logging.WithComponent(logger, "editor"),
	}
}

// Project returns a deep copy of the current project state.
func (s *Service) Project() *timeline.Project {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Clone()
}

// Snapshot returns a deep copy of the current timeline.
func (s *Service) Snapshot() *timeline.Timeline {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Timeline.Clone()
}

// LoadProject replaces the current project with one read from disk and
// drops the edit history.
func (s *Service) LoadProject(path string) error {
	p, err := timeline.LoadProject(path)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project = p
	s.history.Clear()
	s.logger.Info().Str("path", path).Str("project", p.Name).Msg("loaded project")
	return nil
}

// SaveProject writes the current project to disk.
func (s *Service) SaveProject(path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.project.Save(path)
}

// ImportAsset probes a media file and adds it to the asset pool.
func (s *Service) ImportAsset(ctx context.Context, path string) (timeline.Asset, error) {
	if s.runner == nil {
		return timeline.Asset{}, fmt.Errorf("%w: no runner configured", render.ErrFFmpegNotFound)
	}
	asset, err := s.runner.ImportAsset(ctx, path)
	if err != nil {
		return timeline.Asset{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.project.AddAsset(asset)
	return asset, nil
}

// apply runs a command through the history under the lock and returns the
// resulting timeline snapshot.
func (s *Service) apply(cmd history.Command) (*timeline.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.history.Execute(s.project.Timeline, cmd); err != nil {
		return nil, err
	}
	s.logger.Debug().Str("edit", cmd.Description()).Msg("applied edit")
	return s.project.Timeline.Clone(), nil
}

// AddItem places an item on a track as an undoable edit.
func (s *Service) AddItem(trackID uuid.UUID, it *timeline.Item) (*timeline.Timeline, error) {
	return s.apply(&history.AddItem{TrackID: trackID, Item: it})
}

// RemoveItem deletes an item as an undoable edit.
func (s *Service) RemoveItem(itemID uuid.UUID) (*timeline.Timeline, error) {
	return s.apply(&history.RemoveItem{ItemID: itemID})
}

// MoveItem repositions an item within its track as an undoable edit.
func (s *Service) MoveItem(itemID uuid.UUID, newStart timeline.TimeUs) (*timeline.Timeline, error) {
	return s.apply(&history.MoveItem{ItemID: itemID, NewStart: newStart})
}

// MoveItemToTrack relocates an item onto another track as an undoable edit.
func (s *Service) MoveItemToTrack(itemID, targetTrackID uuid.UUID, newStart timeline.TimeUs) (*timeline.Timeline, error) {
	return s.apply(&history.MoveToTrack{ItemID: itemID, TargetTrackID: targetTrackID, NewStart: newStart})
}

// TrimIn adjusts an item's left edge as an undoable edit.
func (s *Service) TrimIn(itemID uuid.UUID, newIn timeline.TimeUs) (*timeline.Timeline, error) {
	return s.apply(&history.TrimIn{ItemID: itemID, NewIn: newIn})
}

// TrimOut adjusts an item's right edge as an undoable edit.
func (s *Service) TrimOut(itemID uuid.UUID, newOut timeline.TimeUs) (*timeline.Timeline, error) {
	return s.apply(&history.TrimOut{ItemID: itemID, NewOut: newOut})
}

// SplitAt cuts an item at a timeline position as an undoable edit.
func (s *Service) SplitAt(itemID uuid.UUID, at timeline.TimeUs) (*timeline.Timeline, error) {
	return s.apply(&history.Split{ItemID: itemID, At: at})
}

// Undo reverses the most recent edit.
func (s *Service) Undo() (*timeline.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.history.Undo(s.project.Timeline); err != nil {
		return nil, err
	}
	return s.project.Timeline.Clone(), nil
}

// Redo re-applies the most recently undone edit.
func (s *Service) Redo() (*timeline.Timeline, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.history.Redo(s.project.Timeline); err != nil {
		return nil, err
	}
	return s.project.Timeline.Clone(), nil
}

// HistoryState summarizes what undo and redo would currently do.
type HistoryState struct {
	CanUndo  bool   `json:"can_undo"`
	CanRedo  bool   `json:"can_redo"`
	UndoDesc string `json:"undo_description"`
	RedoDesc string `json:"redo_description"`
}

// History reports the current undo/redo availability.
func (s *Service) History() HistoryState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return HistoryState{
		CanUndo:  s.history.CanUndo(),
		CanRedo:  s.history.CanRedo(),
		UndoDesc: s.history.UndoDescription(),
		RedoDesc: s.history.RedoDescription(),
	}
}

// SetClipVolume adjusts a clip's gain. Volume tweaks are continuous while
// dragging a slider, so they bypass the history.
func (s *Service) SetClipVolume(itemID uuid.UUID, volume float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, _, ok := s.project.Timeline.FindItem(itemID)
	if !ok {
		return fmt.Errorf("%w: %s", timeline.ErrItemNotFound, itemID)
	}
	it.Volume = volume
	return nil
}

// AddMarker drops a marker on the timeline.
func (s *Service) AddMarker(at timeline.TimeUs, label, color string) timeline.Marker {
	s.mu.Lock()
	defer s.mu.Unlock()
	m := timeline.Marker{ID: uuid.New(), Time: at, Label: label, Color: color}
	s.project.Timeline.Markers = append(s.project.Timeline.Markers, m)
	return m
}

// Snap resolves a dragged position against item edges and markers, excluding
// the dragged item's own edges.
func (s *Service) Snap(pos timeline.TimeUs, exclude uuid.UUID, threshold timeline.TimeUs) timeline.TimeUs {
	s.mu.Lock()
	defer s.mu.Unlock()
	points := s.project.Timeline.CollectSnapPoints(exclude)
	return timeline.FindSnapPoint(pos, points, threshold)
}

// PlayheadClip describes the source media under the playhead, for preview.
type PlayheadClip struct {
	FilePath    string          `json:"file_path"`
	SeekSeconds float64         `json:"seek_seconds"`
	ClipStart   timeline.TimeUs `json:"clip_start_us"`
	ClipEnd     timeline.TimeUs `json:"clip_end_us"`
}

// ClipAtPlayhead finds the first item containing the playhead position that
// references an asset, and maps the playhead into source-file seconds.
func (s *Service) ClipAtPlayhead(playhead timeline.TimeUs) (PlayheadClip, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, tr := range s.project.Timeline.Tracks {
		for _, it := range tr.Items {
			if it.Start <= playhead && playhead < it.End() && it.HasAsset() {
				asset, ok := s.project.AssetByID(it.AssetID)
				if !ok {
					continue
				}
				return PlayheadClip{
					FilePath:    asset.Path,
					SeekSeconds: (it.SourceIn + (playhead - it.Start)).Seconds(),
					ClipStart:   it.Start,
					ClipEnd:     it.End(),
				}, true
			}
		}
	}
	return PlayheadClip{}, false
}

// ExportJob is a running render started by Export.
type ExportJob struct {
	Plan     *render.Plan
	Progress *render.ProgressSink
	Done     chan error
}

// Export compiles the current project and starts rendering it to outputPath
// in the background. The snapshot is taken under the lock, so editing can
// continue while the render runs.
func (s *Service) Export(ctx context.Context, outputPath string) (*ExportJob, error) {
	if s.runner == nil {
		return nil, fmt.Errorf("%w: no runner configured", render.ErrFFmpegNotFound)
	}

	s.mu.Lock()
	snapshot := s.project.Clone()
	s.mu.Unlock()

	plan, err := render.Compile(snapshot)
	if err != nil {
		return nil, err
	}
	plan.OutputPath = outputPath
	totalDuration := snapshot.Duration()

	job := &ExportJob{
		Plan:     plan,
		Progress: render.NewProgressSink(),
		Done:     make(chan error, 1),
	}

	s.logger.Info().
		Str("output", outputPath).
		Str("duration", totalDuration.String()).
		Msg("starting export")

	go func() {
		job.Done <- s.runner.Execute(ctx, plan, job.Progress, totalDuration)
	}()

	return job, nil
}

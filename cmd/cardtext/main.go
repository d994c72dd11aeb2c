package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"syscall"

	"github.com/c2h5oh/datasize"
	"go.uber.org/zap"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	_ "go.uber.org/automaxprocs"

	"github.com/duelmod/cardtext/brace"
	"github.com/duelmod/cardtext/builder"
	"github.com/duelmod/cardtext/conf"
	"github.com/duelmod/cardtext/consts"
	"github.com/duelmod/cardtext/crypt"
	"github.com/duelmod/cardtext/disk"
	"github.com/duelmod/cardtext/logger"
	"github.com/duelmod/cardtext/part"
	"github.com/duelmod/cardtext/textblob"
	"github.com/duelmod/cardtext/workspace"
)

var (
	app    = kingpin.New("cardtext", "Card text database modding tool.")
	config = app.Flag("config", "YAML config file with tunables.").String()

	extractCmd  = app.Command("extract", "Decode the game's text artifacts into a workspace.")
	extractFrom = extractCmd.Flag("from", "Directory with the game's .bytes files.").Required().ExistingDir()
	extractWork = extractCmd.Flag("workspace", "Workspace root.").Default(".").String()

	buildCmd   = app.Command("build", "Fold edited workspace files back into game artifacts.")
	buildFrom  = buildCmd.Flag("from", "Directory with the game's .bytes files, used as a fallback for untouched artifacts.").ExistingDir()
	buildWork  = buildCmd.Flag("workspace", "Workspace root.").Default(".").String()
	buildForce = buildCmd.Flag("force", "Build even when effect pair counts changed.").Bool()

	inspectCmd    = app.Command("inspect", "Report what a workspace holds.")
	inspectWork   = inspectCmd.Flag("workspace", "Workspace root.").Default(".").String()
	inspectRecord = inspectCmd.Flag("record", "Print one record in full.").Default("-1").Int()

	findKeyCmd   = app.Command("find-key", "Search the cipher key of an encrypted artifact file.")
	findKeyStart = findKeyCmd.Flag("start", "First key to try.").Default("0").Uint64()
	findKeyFile  = findKeyCmd.Arg("file", "Encrypted artifact file.").Required().ExistingFile()
)

func main() {
	cmd := kingpin.MustParse(app.Parse(os.Args[1:]))

	if *config != "" {
		if err := conf.Load(*config); err != nil {
			logger.Fatal("can't load config", zap.Error(err))
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	var err error
	switch cmd {
	case extractCmd.FullCommand():
		err = runExtract(ctx)
	case buildCmd.FullCommand():
		err = runBuild(ctx)
	case inspectCmd.FullCommand():
		err = runInspect()
	case findKeyCmd.FullCommand():
		err = runFindKey(ctx)
	}
	if err != nil {
		logger.Fatal("command failed", zap.Error(err))
	}
}

func runExtract(ctx context.Context) error {
	ws, err := workspace.Open(*extractWork)
	if err != nil {
		return err
	}

	res, err := builder.New(ws, builder.NewDirSource(*extractFrom)).Extract(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("key:      %#x\n", res.Key)
	fmt.Printf("records:  %d\n", res.Records)
	fmt.Printf("words:    %d\n", res.Words)
	fmt.Printf("decoded:  %v\n", res.Decoded)
	fmt.Printf("\nedit copies under %s, then run build\n", ws.StageDir(workspace.StageChanged))
	return nil
}

func runBuild(ctx context.Context) error {
	ws, err := workspace.Open(*buildWork)
	if err != nil {
		return err
	}

	var src builder.Source
	if *buildFrom != "" {
		src = builder.NewDirSource(*buildFrom)
	}

	res, err := builder.New(ws, src).Build(ctx, builder.Options{Force: *buildForce})
	if err != nil {
		return err
	}

	fmt.Printf("build:    %s\n", res.ID)
	fmt.Printf("records:  %d\n", res.Records)
	fmt.Printf("modded:   %v\n", res.Modded)
	for _, m := range res.Mismatches {
		fmt.Printf("record %d: %d effect pairs, originally %d\n", m.Record, m.Got, m.Want)
	}
	return nil
}

func runInspect() error {
	ws, err := workspace.Open(*inspectWork)
	if err != nil {
		return err
	}

	if key, ok := crypt.ReadKeyFile(ws.KeyFilePath()); ok {
		fmt.Printf("key:       %#x\n", key)
	} else {
		fmt.Printf("key:       not cached\n")
	}

	if store := disk.NewStore(ws.SnapshotPath()); store.Exists() {
		snap, err := store.Load()
		if err != nil {
			fmt.Printf("snapshot:  unreadable: %v\n", err)
		} else {
			total := 0
			keys := make([]string, 0, len(snap))
			for name, data := range snap {
				total += len(data)
				keys = append(keys, name)
			}
			slices.Sort(keys)
			fmt.Printf("snapshot:  %d artifacts, %s decoded: %v\n",
				len(snap), datasize.ByteSize(total).HumanReadable(), keys)
		}
	} else {
		fmt.Printf("snapshot:  none\n")
	}

	if indx, _, err := ws.ReadDecPreferring(consts.ArtifactIndx, workspace.StageExtracted); err == nil {
		nameOffs, descOffs := textblob.DeinterleaveIndex(indx)
		fmt.Printf("index:     %d name offsets, %d desc offsets\n", len(nameOffs), len(descOffs))
	}

	names, stage, err := ws.ReadJSONListPreferring(consts.ArtifactName,
		workspace.StageChanged, workspace.StageExtracted)
	if err == nil {
		fmt.Printf("names:     %d records (%s)\n", len(names), stage)
	}
	descs, stage, err := ws.ReadJSONListPreferring(consts.ArtifactDesc,
		workspace.StageChanged, workspace.StageExtracted)
	if err == nil {
		fmt.Printf("descs:     %d records (%s)\n", len(descs), stage)
	}
	braced, stage, err := ws.ReadBracedPreferring(workspace.StageChanged, workspace.StageExtracted)
	if err == nil && braced != nil {
		fmt.Printf("braced:    %d records (%s)\n", len(braced), stage)
	}

	if *inspectRecord >= 0 {
		return inspectRecordDetail(ws, *inspectRecord, names, descs, braced)
	}
	return nil
}

func inspectRecordDetail(ws *workspace.Workspace, i int, names, descs, braced []string) error {
	if i >= len(names) && i >= len(descs) {
		return fmt.Errorf("record %d out of range (%d records)", i, len(names))
	}

	fmt.Printf("\nrecord %d\n", i)
	if i < len(names) {
		fmt.Printf("name:      %s\n", names[i])
	}
	if i < len(descs) {
		fmt.Printf("desc:      %s\n", descs[i])
	}
	if i < len(braced) {
		fmt.Printf("braced:    %s\n", braced[i])
		material, segments := brace.ExtractSegments(braced[i])
		fmt.Printf("material:  %s\n", material)
		for j, seg := range segments {
			fmt.Printf("effect %d:  %s\n", j, seg)
		}
	}

	pidx, _, err := ws.ReadDecPreferring(consts.ArtifactPidx, workspace.StageExtracted)
	if err != nil {
		return nil
	}
	parts, _, err := ws.ReadDecPreferring(consts.ArtifactPart, workspace.StageExtracted)
	if err != nil {
		return nil
	}

	entries := part.DecodePidx(pidx)
	ranges, err := part.DecodeParts(parts, entries)
	if err != nil {
		return err
	}
	if i < len(ranges) {
		fmt.Printf("spans:     %v\n", ranges[i])
	}
	return nil
}

func runFindKey(ctx context.Context) error {
	data, err := os.ReadFile(*findKeyFile)
	if err != nil {
		return err
	}

	key, err := crypt.FindKey(ctx, data, *findKeyStart, conf.KeyTrialLimit)
	if err != nil {
		return err
	}
	fmt.Printf("key: %#x\n", key)
	return nil
}

package suite

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"slices"
	"strconv"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/adalundhe/statlab/core/choice"
	"github.com/adalundhe/statlab/core/classify"
	"github.com/adalundhe/statlab/core/cluster"
	"github.com/adalundhe/statlab/core/config"
	"github.com/adalundhe/statlab/core/dataset"
	"github.com/adalundhe/statlab/core/experiment"
	"github.com/adalundhe/statlab/core/mcmc"
	"github.com/adalundhe/statlab/core/regress"
	"github.com/adalundhe/statlab/core/report"
	"github.com/adalundhe/statlab/core/storage"
)

// seedStream derives the second PCG stream word from the user seed.
const seedStream = 0x9E3779B97F4A7C15

// Simulation sizes for the experiment kind's CLT and LLN plots.
const (
	cltSampleSize = 30
	cltDraws      = 1000
	llnDraws      = 5000
)

// credibleLevel is the posterior interval mass reported for conjoint fits.
const credibleLevel = 0.95

// loaderSize caps how many parsed tables the runner keeps cached.
const loaderSize = 8

// Result is the rendered output of one report.
type Result struct {
	Name    string             `json:"name"`
	Kind    Kind               `json:"kind"`
	Dataset string             `json:"dataset,omitempty"`
	Tables  []*report.Table    `json:"tables"`
	Plots   []string           `json:"plots,omitempty"`
	Metrics map[string]float64 `json:"metrics,omitempty"`
	Params  map[string]string  `json:"params,omitempty"`
}

func (res *Result) addTable(t *report.Table) { res.Tables = append(res.Tables, t) }

func (res *Result) addPlot(path string) { res.Plots = append(res.Plots, path) }

func (res *Result) metric(name string, v float64) { res.Metrics[name] = v }

// Runner executes report definitions against a shared dataset cache and a
// base configuration.
type Runner struct {
	loader *dataset.Loader
	base   *config.Config
	outDir string
	logger *slog.Logger
}

// NewRunner returns a Runner. A nil base uses the built-in defaults; outDir
// is where plots land unless a suite overrides it.
func NewRunner(base *config.Config, outDir string, logger *slog.Logger) (*Runner, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if base == nil {
		base = config.DefaultConfig()
	}
	loader, err := dataset.NewLoader(loaderSize, logger)
	if err != nil {
		return nil, err
	}
	return &Runner{
		loader: loader,
		base:   base,
		outDir: outDir,
		logger: logger,
	}, nil
}

// Loader exposes the shared dataset cache.
func (r *Runner) Loader() *dataset.Loader { return r.loader }

// RunSuite executes every report in order, stopping at the first failure.
func (r *Runner) RunSuite(s *Suite) ([]*Result, error) {
	outDir := r.outDir
	if s.Output != "" {
		outDir = s.Output
	}

	results := make([]*Result, 0, len(s.Reports))
	for i := range s.Reports {
		rep := &s.Reports[i]
		res, err := r.runIn(rep, outDir)
		if err != nil {
			return nil, fmt.Errorf("report %s: %w", rep.Name, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// Run executes a single report definition.
func (r *Runner) Run(rep *Report) (*Result, error) {
	res, err := r.runIn(rep, r.outDir)
	if err != nil {
		return nil, fmt.Errorf("report %s: %w", rep.Name, err)
	}
	return res, nil
}

func (r *Runner) runIn(rep *Report, outDir string) (*Result, error) {
	if err := rep.Validate(); err != nil {
		return nil, err
	}

	cfg := *r.base
	config.Overlay(&cfg, rep.Config)
	if outDir == "" {
		outDir = cfg.Output.PlotDir
	}

	r.logger.Info("running report", "name", rep.Name, "kind", rep.Kind, "dataset", rep.Dataset)

	res := &Result{
		Name:    rep.Name,
		Kind:    rep.Kind,
		Dataset: rep.Dataset,
		Metrics: make(map[string]float64),
		Params:  make(map[string]string),
	}

	var err error
	switch rep.Kind {
	case KindDescribe:
		err = r.runDescribe(rep, &cfg, res)
	case KindCluster:
		err = r.runCluster(rep, &cfg, outDir, res)
	case KindClassify:
		err = r.runClassify(rep, &cfg, res)
	case KindPoisson:
		err = r.runPoisson(rep, &cfg, res)
	case KindExperiment:
		err = r.runExperiment(rep, &cfg, outDir, res)
	case KindConjoint:
		err = r.runConjoint(rep, &cfg, outDir, res)
	default:
		err = fmt.Errorf("unknown kind %q", rep.Kind)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (r *Runner) runDescribe(rep *Report, cfg *config.Config, res *Result) error {
	tbl, err := r.loader.Load(rep.Dataset)
	if err != nil {
		return err
	}
	names, err := tbl.SelectColumns(rep.Columns...)
	if err != nil {
		return err
	}
	keep := make(map[string]bool, len(names))
	for _, n := range names {
		keep[n] = true
	}

	prec := cfg.Output.Precision
	tab := &report.Table{
		Title:   fmt.Sprintf("%s: %d rows", tbl.Source(), tbl.Rows()),
		Headers: []string{"column", "kind", "n", "mean", "sd", "min", "median", "max", "distinct", "top"},
	}
	for _, cs := range tbl.Summary() {
		if !keep[cs.Name] {
			continue
		}
		tab.AddRow(
			cs.Name,
			cs.Kind.String(),
			strconv.Itoa(cs.N),
			report.Float(cs.Mean, prec),
			report.Float(cs.StdDev, prec),
			report.Float(cs.Min, prec),
			report.Float(cs.Median, prec),
			report.Float(cs.Max, prec),
			strconv.Itoa(cs.Distinct),
			cs.Top,
		)
	}
	res.addTable(tab)
	res.metric("rows", float64(tbl.Rows()))
	res.metric("columns", float64(len(names)))
	return nil
}

func (r *Runner) runCluster(rep *Report, cfg *config.Config, outDir string, res *Result) error {
	tbl, err := r.loader.Load(rep.Dataset)
	if err != nil {
		return err
	}
	names, err := numericColumns(tbl, rep.Columns, "")
	if err != nil {
		return err
	}
	points, err := tbl.NumericRows(names...)
	if err != nil {
		return err
	}
	if rep.Standardize {
		points, err = cluster.Standardize(points)
		if err != nil {
			return err
		}
	}

	k := intOr(rep.K, cfg.Cluster.K)
	fit, err := cluster.Fit(points, cluster.Config{
		K:             k,
		MaxIterations: cfg.Cluster.MaxIterations,
		Tolerance:     cfg.Cluster.Tolerance,
		Seed:          seedOr(rep.Seed, cfg.Cluster.Seed),
	})
	if err != nil {
		return err
	}

	prec := cfg.Output.Precision
	centroids := &report.Table{
		Title:   fmt.Sprintf("K-means centroids (k=%d)", k),
		Headers: append([]string{"cluster", "size"}, names...),
	}
	for c, center := range fit.Centroids {
		row := []string{strconv.Itoa(c), strconv.Itoa(fit.Counts[c])}
		for _, v := range center {
			row = append(row, report.Float(v, prec))
		}
		centroids.AddRow(row...)
	}
	res.addTable(centroids)

	fitTab := &report.Table{Title: "Fit", Headers: []string{"statistic", "value"}}
	fitTab.AddRow("inertia", report.Float(fit.Inertia, prec))
	fitTab.AddRow("iterations", strconv.Itoa(fit.Iterations))
	fitTab.AddRow("converged", strconv.FormatBool(fit.Converged))
	res.metric("inertia", fit.Inertia)
	res.metric("iterations", float64(fit.Iterations))

	if k >= 2 {
		sil, err := cluster.Silhouette(points, fit.Assignments)
		if err != nil {
			return err
		}
		fitTab.AddRow("silhouette", report.Float(sil, prec))
		res.metric("silhouette", sil)
	}
	res.addTable(fitTab)

	if rep.Plot != "" {
		path, err := plotPath(outDir, rep.Plot)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("%s clusters (k=%d)", rep.Name, k)
		if err := report.ClusterScatter(path, title, points, fit.Assignments, fit.Centroids); err != nil {
			return err
		}
		res.addPlot(path)
	}

	res.Params["columns"] = fmt.Sprintf("%v", names)
	res.Params["k"] = strconv.Itoa(k)
	return nil
}

func (r *Runner) runClassify(rep *Report, cfg *config.Config, res *Result) error {
	tbl, err := r.loader.Load(rep.Dataset)
	if err != nil {
		return err
	}
	labels, err := tbl.Categorical(rep.Label)
	if err != nil {
		return err
	}
	names, err := numericColumns(tbl, rep.Features, rep.Label)
	if err != nil {
		return err
	}
	points, err := tbl.NumericRows(names...)
	if err != nil {
		return err
	}

	fraction := floatOr(rep.TestFraction, cfg.Classify.TestFraction)
	seed := seedOr(rep.Seed, cfg.Classify.Seed)
	rng := rand.New(rand.NewPCG(seed, seed^seedStream))
	trainX, trainY, testX, testY, err := classify.Split(points, labels, fraction, rng)
	if err != nil {
		return err
	}

	k := intOr(rep.Neighbors, cfg.Classify.Neighbors)
	model, err := classify.Fit(trainX, trainY, k)
	if err != nil {
		return err
	}
	predicted, err := model.PredictBatch(testX)
	if err != nil {
		return err
	}
	cm, err := classify.ConfusionMatrix(testY, predicted)
	if err != nil {
		return err
	}

	tab := &report.Table{
		Title:   fmt.Sprintf("KNN (k=%d) confusion matrix, %d train / %d test", k, len(trainY), len(testY)),
		Headers: append([]string{`actual \ predicted`}, cm.Labels...),
	}
	for i, label := range cm.Labels {
		row := []string{label}
		for _, n := range cm.Counts[i] {
			row = append(row, strconv.Itoa(n))
		}
		tab.AddRow(row...)
	}
	res.addTable(tab)

	accuracy := cm.Accuracy()
	fitTab := &report.Table{Title: "Fit", Headers: []string{"statistic", "value"}}
	fitTab.AddRow("accuracy", report.Float(accuracy, cfg.Output.Precision))
	fitTab.AddRow("train size", strconv.Itoa(len(trainY)))
	fitTab.AddRow("test size", strconv.Itoa(len(testY)))
	res.addTable(fitTab)

	res.metric("accuracy", accuracy)
	res.metric("train_size", float64(len(trainY)))
	res.metric("test_size", float64(len(testY)))
	res.Params["label"] = rep.Label
	res.Params["features"] = fmt.Sprintf("%v", names)

	if len(rep.Predict) > 0 {
		// Query predictions use every observation, not just the train split.
		full, err := classify.Fit(points, labels, k)
		if err != nil {
			return err
		}
		label, err := full.Predict(rep.Predict)
		if err != nil {
			return err
		}
		pred := &report.Table{
			Title:   "Prediction",
			Headers: append(append([]string{}, names...), rep.Label),
		}
		row := make([]string, 0, len(rep.Predict)+1)
		for _, v := range rep.Predict {
			row = append(row, report.Float(v, cfg.Output.Precision))
		}
		pred.AddRow(append(row, label)...)
		res.addTable(pred)
		res.Params["predict"] = fmt.Sprintf("%v", rep.Predict)
		res.Params["predicted"] = label
	}
	return nil
}

func (r *Runner) runPoisson(rep *Report, cfg *config.Config, res *Result) error {
	tbl, err := r.loader.Load(rep.Dataset)
	if err != nil {
		return err
	}
	x, terms, err := tbl.DesignMatrix(true, rep.Features...)
	if err != nil {
		return err
	}
	y, err := tbl.Numeric(rep.Outcome)
	if err != nil {
		return err
	}

	mle, err := regress.FitPoissonMLE(x, y, terms, nil)
	if err != nil {
		return err
	}
	glm, err := regress.FitGLM(x, y, regress.PoissonLog(), terms)
	if err != nil {
		return err
	}

	prec := cfg.Output.Precision
	coef := &report.Table{
		Title:   fmt.Sprintf("Poisson regression of %s", rep.Outcome),
		Headers: []string{"term", "mle", "irls", "std error", "z", "p"},
	}
	for j, term := range terms {
		coef.AddRow(
			term,
			report.Float(mle.Coeffs[j], prec),
			report.Float(glm.Coeffs[j], prec),
			report.Float(glm.StdErrs[j], prec),
			report.Float(glm.ZStats[j], prec),
			report.PValue(glm.PValues[j]),
		)
	}
	res.addTable(coef)

	fitTab := &report.Table{Title: "Fit", Headers: []string{"statistic", "value"}}
	fitTab.AddRow("log-likelihood (mle)", report.Float(mle.LogLikelihood, prec))
	fitTab.AddRow("log-likelihood (irls)", report.Float(glm.LogLikelihood, prec))
	fitTab.AddRow("deviance", report.Float(glm.Deviance, prec))
	fitTab.AddRow("irls iterations", strconv.Itoa(glm.Iterations))
	fitTab.AddRow("mle evaluations", strconv.Itoa(mle.Evaluations))
	fitTab.AddRow("mle status", mle.Status)
	res.addTable(fitTab)

	res.metric("log_likelihood", glm.LogLikelihood)
	res.metric("deviance", glm.Deviance)
	res.Params["outcome"] = rep.Outcome
	return nil
}

func (r *Runner) runExperiment(rep *Report, cfg *config.Config, outDir string, res *Result) error {
	tbl, err := r.loader.Load(rep.Dataset)
	if err != nil {
		return err
	}
	prec := cfg.Output.Precision

	if len(rep.Covariates) > 0 {
		rows, err := experiment.Balance(tbl, rep.Treatment, rep.Covariates...)
		if err != nil {
			return err
		}
		tab := &report.Table{
			Title:   "Covariate balance",
			Headers: []string{"covariate", "control", "treated", "diff", "t", "p"},
		}
		for _, row := range rows {
			tab.AddRow(
				row.Covariate,
				report.Float(row.ControlMean, prec),
				report.Float(row.TreatedMean, prec),
				report.Float(row.Diff, prec),
				report.Float(row.T, prec),
				report.PValue(row.P),
			)
		}
		res.addTable(tab)
	}

	ate, err := experiment.ATEFromTable(tbl, rep.Outcome, rep.Treatment)
	if err != nil {
		return err
	}
	tab := &report.Table{
		Title:   fmt.Sprintf("Average treatment effect on %s", rep.Outcome),
		Headers: []string{"statistic", "value"},
	}
	tab.AddRow("control mean", report.Float(ate.ControlMean, prec))
	tab.AddRow("treated mean", report.Float(ate.TreatedMean, prec))
	tab.AddRow("effect", report.Float(ate.Effect, prec))
	tab.AddRow("std error", report.Float(ate.StdErr, prec))
	tab.AddRow("t", report.Float(ate.T, prec))
	tab.AddRow("df", report.Float(ate.DF, prec))
	tab.AddRow("p", report.PValue(ate.P))
	tab.AddRow("n control", strconv.Itoa(ate.NControl))
	tab.AddRow("n treated", strconv.Itoa(ate.NTreated))
	res.addTable(tab)

	ols, err := experiment.ATEOLS(tbl, rep.Outcome, rep.Treatment, rep.Covariates...)
	if err != nil {
		return err
	}
	res.addTable(coefficientTable(
		"Regression adjustment (OLS)", "t",
		ols.Terms, ols.Coeffs, ols.StdErrs, ols.TStats, ols.PValues, prec,
	))

	if rep.BinaryOutcome != "" {
		probit, err := experiment.ATEProbit(tbl, rep.BinaryOutcome, rep.Treatment, rep.Covariates...)
		if err != nil {
			return err
		}
		res.addTable(coefficientTable(
			fmt.Sprintf("Probit of %s", rep.BinaryOutcome), "z",
			probit.Terms, probit.Coeffs, probit.StdErrs, probit.ZStats, probit.PValues, prec,
		))
	}

	if rep.Plots {
		if err := r.simulationPlots(rep, tbl, outDir, res); err != nil {
			return err
		}
	}

	res.metric("effect", ate.Effect)
	res.metric("std_error", ate.StdErr)
	res.metric("p_value", ate.P)
	res.Params["outcome"] = rep.Outcome
	res.Params["treatment"] = rep.Treatment
	return nil
}

// simulationPlots writes the CLT histogram and LLN running-mean plot for a
// Gaussian matched to the outcome's moments.
func (r *Runner) simulationPlots(rep *Report, tbl *dataset.Table, outDir string, res *Result) error {
	outcome, err := tbl.Numeric(rep.Outcome)
	if err != nil {
		return err
	}
	mean, sd := stat.MeanStdDev(outcome, nil)
	seed := seedOr(rep.Seed, 1)
	dist := distuv.Normal{Mu: mean, Sigma: sd, Src: rand.NewPCG(seed, seed^seedStream)}

	clt, err := experiment.CLT(dist, cltSampleSize, cltDraws)
	if err != nil {
		return err
	}
	path, err := plotPath(outDir, rep.Name+"_clt.png")
	if err != nil {
		return err
	}
	title := fmt.Sprintf("Sampling distribution of the mean (n=%d)", cltSampleSize)
	if err := report.Histogram(path, title, clt.Means, 0); err != nil {
		return err
	}
	res.addPlot(path)

	lln, err := experiment.LLN(dist, llnDraws)
	if err != nil {
		return err
	}
	path, err = plotPath(outDir, rep.Name+"_lln.png")
	if err != nil {
		return err
	}
	if err := report.Line(path, "Running mean", "draws", lln); err != nil {
		return err
	}
	res.addPlot(path)
	return nil
}

func (r *Runner) runConjoint(rep *Report, cfg *config.Config, outDir string, res *Result) error {
	var (
		data  *choice.Data
		terms []string
		err   error
	)
	seed := seedOr(rep.Seed, cfg.Sampler.Seed)
	if rep.Simulate {
		rng := rand.New(rand.NewPCG(seed, seed^seedStream))
		data, err = choice.Simulate(choice.DefaultSimSpec(), rng)
		terms = append([]string(nil), choice.SimColumns...)
	} else {
		var tbl *dataset.Table
		tbl, err = r.loader.Load(rep.Dataset)
		if err != nil {
			return err
		}
		data, terms, err = choice.FromTable(tbl, rep.Choice, rep.Group, rep.Features...)
	}
	if err != nil {
		return err
	}

	priceIdx, err := priceIndex(rep.Price, terms)
	if err != nil {
		return err
	}

	mle, err := choice.FitMLE(data, nil)
	if err != nil {
		return err
	}
	post, err := choice.NewPosterior(data, choice.DefaultPrior(priceIdx))
	if err != nil {
		return err
	}
	sampler, err := mcmc.New(post, mcmc.Config{
		Steps:         cfg.Sampler.Steps,
		BurnIn:        cfg.Sampler.BurnIn,
		ProposalScale: cfg.Sampler.ProposalScale,
		Seed:          seed,
	})
	if err != nil {
		return err
	}
	chain, err := sampler.Run(mle.Coeffs)
	if err != nil {
		return err
	}
	summary, err := chain.Summary(terms, credibleLevel)
	if err != nil {
		return err
	}

	prec := cfg.Output.Precision
	coef := &report.Table{
		Title:   fmt.Sprintf("Choice model: MLE and posterior (%d tasks)", data.Groups()),
		Headers: []string{"term", "mle", "mean", "sd", "2.5%", "97.5%"},
	}
	for j, s := range summary {
		coef.AddRow(
			s.Name,
			report.Float(mle.Coeffs[j], prec),
			report.Float(s.Mean, prec),
			report.Float(s.StdDev, prec),
			report.Float(s.Lower, prec),
			report.Float(s.Upper, prec),
		)
	}
	res.addTable(coef)

	fitTab := &report.Table{Title: "Sampler", Headers: []string{"statistic", "value"}}
	fitTab.AddRow("draws", strconv.Itoa(chain.Len()))
	fitTab.AddRow("acceptance rate", report.Float(chain.AcceptanceRate(), prec))
	fitTab.AddRow("log-likelihood (mle)", report.Float(mle.LogLikelihood, prec))
	fitTab.AddRow("mle status", mle.Status)
	res.addTable(fitTab)

	if rep.Plot != "" {
		j := priceIdx
		if j < 0 {
			j = 0
		}
		path, err := plotPath(outDir, rep.Plot)
		if err != nil {
			return err
		}
		title := fmt.Sprintf("Trace of %s", terms[j])
		if err := report.Trace(path, title, chain.Param(j)); err != nil {
			return err
		}
		res.addPlot(path)
	}

	res.metric("log_likelihood", mle.LogLikelihood)
	res.metric("acceptance_rate", chain.AcceptanceRate())
	res.metric("draws", float64(chain.Len()))
	res.Params["terms"] = fmt.Sprintf("%v", terms)
	res.Params["simulate"] = strconv.FormatBool(rep.Simulate)
	return nil
}

// priceIndex locates the price coefficient. An explicitly named column must
// exist; the implicit default "price" may be absent, which disables the
// tighter price prior.
func priceIndex(name string, terms []string) (int, error) {
	if name != "" {
		idx := slices.Index(terms, name)
		if idx < 0 {
			return 0, fmt.Errorf("price column %q is not among the model terms %v", name, terms)
		}
		return idx, nil
	}
	return slices.Index(terms, "price"), nil
}

// numericColumns resolves an explicit selection, or falls back to every
// numeric column except the one named by exclude.
func numericColumns(t *dataset.Table, requested []string, exclude string) ([]string, error) {
	if len(requested) > 0 {
		return t.SelectColumns(requested...)
	}
	var names []string
	for _, name := range t.Names() {
		if name == exclude {
			continue
		}
		if kind, err := t.Kind(name); err == nil && kind == dataset.KindNumeric {
			names = append(names, name)
		}
	}
	if len(names) == 0 {
		return nil, fmt.Errorf("%s has no numeric columns", t.Source())
	}
	return names, nil
}

func coefficientTable(title, statName string, terms []string, coeffs, ses, stats, ps []float64, prec int) *report.Table {
	tab := &report.Table{
		Title:   title,
		Headers: []string{"term", "estimate", "std error", statName, "p"},
	}
	for j, term := range terms {
		tab.AddRow(
			term,
			report.Float(coeffs[j], prec),
			report.Float(ses[j], prec),
			report.Float(stats[j], prec),
			report.PValue(ps[j]),
		)
	}
	return tab
}

func plotPath(dir, name string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := storage.EnsureDir(dir, 0o755); err != nil {
		return "", fmt.Errorf("plot dir: %w", err)
	}
	return filepath.Join(dir, name), nil
}

func seedOr(seed, fallback uint64) uint64 {
	if seed != 0 {
		return seed
	}
	return fallback
}

func intOr(v, fallback int) int {
	if v != 0 {
		return v
	}
	return fallback
}

func floatOr(v, fallback float64) float64 {
	if v != 0 {
		return v
	}
	return fallback
}

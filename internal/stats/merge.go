package stats

import (
	"sort"

	"github.com/verte-zerg/quizstat/internal/model"
)

// MergeSample folds one attempt into a test report. The new average weighs
// every earlier attempt equally regardless of how many answers it held:
// floor((avg*count + sample)/(count+1)).
func MergeSample(report model.UserTestReport, sample model.NamedTestSample) model.UserTestReport {
	if report.Attempts <= 0 {
		return model.UserTestReport{TestName: sample.TestName, Attempts: 1, Average: sample.Average}
	}
	count := report.Attempts + 1
	return model.UserTestReport{
		TestName: report.TestName,
		Attempts: count,
		Average:  (report.Average*report.Attempts + sample.Average) / count,
	}
}

// MergeByTestName folds samples into one report per test name, in order of
// first appearance.
func MergeByTestName(samples []model.NamedTestSample) []model.UserTestReport {
	reports := make([]model.UserTestReport, 0)
	index := map[string]int{}
	for _, sample := range samples {
		i, ok := index[sample.TestName]
		if !ok {
			index[sample.TestName] = len(reports)
			reports = append(reports, MergeSample(model.UserTestReport{}, sample))
			continue
		}
		reports[i] = MergeSample(reports[i], sample)
	}
	return reports
}

// RankUserReports orders reports weakest first. Ties keep their order.
func RankUserReports(reports []model.UserTestReport) []model.UserTestReport {
	out := append([]model.UserTestReport(nil), reports...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Average < out[j].Average
	})
	return out
}

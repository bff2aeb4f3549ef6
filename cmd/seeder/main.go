package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"time"

	"github.com/poiesic/expertmatch"
	"github.com/poiesic/expertmatch/core"
	"github.com/poiesic/expertmatch/ingestion"
)

var dbPath = flag.String("db", "./expertmatch_db", "database directory")

func init() {
	handler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	})
	slog.SetDefault(slog.New(handler))
	flag.Parse()
}

type seedAttribute struct {
	typ     core.AttributeType
	name    string
	summary string
}

var taxonomy = []seedAttribute{
	{core.AttributeTypeAgency, "nasa", "National Aeronautics and Space Administration"},
	{core.AttributeTypeAgency, "noaa", "National Oceanic and Atmospheric Administration"},
	{core.AttributeTypeAgency, "department of energy", "Federal energy research and policy agency"},
	{core.AttributeTypeRole, "data scientist", "Builds statistical and machine learning models"},
	{core.AttributeTypeRole, "software engineer", "Designs and implements software systems"},
	{core.AttributeTypeRole, "program manager", "Coordinates programs across teams and stakeholders"},
	{core.AttributeTypeSeniority, "senior", "Senior individual contributor"},
	{core.AttributeTypeSeniority, "lead", "Leads a team or technical area"},
	{core.AttributeTypeSkill, "machine learning", "Statistical learning and model development"},
	{core.AttributeTypeSkill, "kubernetes", "Container orchestration and cluster operations"},
	{core.AttributeTypeSkill, "data analysis", "Exploratory and statistical data analysis"},
	{core.AttributeTypeSkill, "geospatial analysis", "Processing and analysis of geospatial data"},
	{core.AttributeTypeProgram, "artemis", "Lunar exploration program"},
	{core.AttributeTypeProgram, "landsat", "Earth observation satellite program"},
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

var profiles = []*ingestion.ExpertProfile{
	{
		Name:    "Maria Vasquez",
		Summary: "Machine learning specialist with a decade of federal research experience",
		Active:  true,
		Experiences: []ingestion.ExperienceProfile{
			{
				Employer:  "NASA Goddard",
				Position:  "Senior Data Scientist",
				StartDate: date(2018, 3, 1),
				Summary:   "Model development for Earth observation products",
				Attributes: []ingestion.AttributeTerm{
					{Type: core.AttributeTypeAgency, Name: "nasa"},
					{Type: core.AttributeTypeRole, Name: "data scientist"},
					{Type: core.AttributeTypeSeniority, Name: "senior"},
					{Type: core.AttributeTypeSkill, Name: "machine learning"},
					{Type: core.AttributeTypeProgram, Name: "landsat"},
				},
			},
			{
				Employer:  "Orbital Insight",
				Position:  "Data Scientist",
				StartDate: date(2014, 6, 1),
				EndDate:   date(2018, 2, 1),
				Attributes: []ingestion.AttributeTerm{
					{Type: core.AttributeTypeRole, Name: "data scientist"},
					{Type: core.AttributeTypeSkill, Name: "geospatial analysis"},
				},
			},
		},
	},
	{
		Name:    "Devon Clarke",
		Summary: "Platform engineer focused on scientific computing infrastructure",
		Active:  true,
		Experiences: []ingestion.ExperienceProfile{
			{
				Employer:  "NOAA",
				Position:  "Lead Software Engineer",
				StartDate: date(2020, 1, 1),
				Summary:   "Forecast pipeline infrastructure",
				Attributes: []ingestion.AttributeTerm{
					{Type: core.AttributeTypeAgency, Name: "noaa"},
					{Type: core.AttributeTypeRole, Name: "software engineer"},
					{Type: core.AttributeTypeSeniority, Name: "lead"},
					{Type: core.AttributeTypeSkill, Name: "kubernetes"},
				},
			},
		},
	},
	{
		Name:    "Priya Raman",
		Summary: "Program manager for large research initiatives",
		Active:  true,
		Experiences: []ingestion.ExperienceProfile{
			{
				Employer:  "NASA JSC",
				Position:  "Program Manager",
				StartDate: date(2019, 9, 1),
				Attributes: []ingestion.AttributeTerm{
					{Type: core.AttributeTypeAgency, Name: "nasa"},
					{Type: core.AttributeTypeRole, Name: "program manager"},
					{Type: core.AttributeTypeProgram, Name: "artemis"},
				},
			},
			{
				Employer:  "Department of Energy",
				Position:  "Analyst",
				StartDate: date(2015, 1, 1),
				EndDate:   date(2019, 8, 1),
				Attributes: []ingestion.AttributeTerm{
					{Type: core.AttributeTypeAgency, Name: "department of energy"},
					{Type: core.AttributeTypeSkill, Name: "data analysis"},
				},
			},
		},
	},
}

func main() {
	db, err := expertmatch.NewDatabase(*dbPath)
	if err != nil {
		panic(err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline()
	if err != nil {
		panic(err)
	}
	defer pipeline.Release()

	ctx := context.Background()

	for _, entry := range taxonomy {
		attr, err := pipeline.RegisterAttribute(ctx, entry.typ, entry.name, entry.summary)
		if err != nil {
			panic(err)
		}
		slog.Info("registered attribute", "type", attr.Type, "name", attr.Name, "id", attr.Id)
	}

	for _, profile := range profiles {
		expert, err := pipeline.IngestExpert(ctx, profile)
		if err != nil {
			panic(err)
		}
		slog.Info("ingested expert", "name", expert.Name, "id", expert.Id)
	}
}

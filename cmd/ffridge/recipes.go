package main

import (
	"fmt"
	"io"
	"strings"

	"ffridge/internal/app"
	"ffridge/internal/core/recipe"

	"github.com/spf13/cobra"
)

func suggestCmd(opts *options) *cobra.Command {
	var single, save bool

	cmd := &cobra.Command{
		Use:   "suggest [ingredients...]",
		Short: "Ask the AI for recipes (defaults to what's in the fridge)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				ctx := cmd.Context()
				names := splitIngredients(args)
				if len(names) == 0 {
					stored, err := a.Inventory.Names(ctx)
					if err != nil {
						return err
					}
					names = stored
				}

				var recipes []recipe.Recipe
				if single {
					r, err := a.Recipes.GenerateRecipe(ctx, names)
					if err != nil {
						return err
					}
					recipes = []recipe.Recipe{*r}
				} else {
					var err error
					if recipes, err = a.Recipes.GenerateRecipes(ctx, names); err != nil {
						return err
					}
				}

				if save {
					if err := a.Recipes.SaveAll(ctx, recipes); err != nil {
						return err
					}
				}
				for i := range recipes {
					printRecipe(cmd.OutOrStdout(), &recipes[i], true)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&single, "single", false, "generate one recipe instead of a batch")
	cmd.Flags().BoolVar(&save, "save", false, "save generated recipes to the recipe book")
	return cmd
}

func recipesCmd(opts *options) *cobra.Command {
	var (
		q        recipe.Query
		quick    bool
		favorite string
		remove   string
	)

	cmd := &cobra.Command{
		Use:   "recipes",
		Short: "Browse the saved recipe book",
		RunE: func(cmd *cobra.Command, args []string) error {
			return opts.withApp(cmd.Context(), func(a *app.App) error {
				ctx := cmd.Context()
				out := cmd.OutOrStdout()

				switch {
				case favorite != "":
					r, err := a.Recipes.ToggleFavorite(ctx, favorite)
					if err != nil {
						return err
					}
					fmt.Fprintf(out, "%s favorite: %t\n", r.Title, r.IsFavorite)
					return nil
				case remove != "":
					if err := a.Recipes.Delete(ctx, remove); err != nil {
						return err
					}
					fmt.Fprintf(out, "Removed %s\n", remove)
					return nil
				}

				if quick {
					q.MaxMinutes = recipe.QuickMaxMinutes
				}
				q.Difficulty = recipe.Difficulty(strings.ToUpper(string(q.Difficulty)))
				recipes, err := a.Recipes.List(ctx, q)
				if err != nil {
					return err
				}
				if len(recipes) == 0 {
					fmt.Fprintln(out, "No saved recipes.")
					return nil
				}
				for i := range recipes {
					printRecipe(out, &recipes[i], false)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&q.FavoritesOnly, "favorites", "f", false, "only favorites")
	cmd.Flags().BoolVar(&quick, "quick", false, "only recipes ready in 30 minutes")
	cmd.Flags().IntVar(&q.MaxMinutes, "max-time", 0, "maximum cooking time in minutes")
	cmd.Flags().StringVarP((*string)(&q.Difficulty), "difficulty", "d", "", "EASY, MEDIUM or HARD")
	cmd.Flags().StringVarP(&q.Search, "search", "s", "", "search title or description")
	cmd.Flags().StringVar(&favorite, "toggle-favorite", "", "toggle favorite for recipe ID")
	cmd.Flags().StringVar(&remove, "delete", "", "delete recipe ID")
	return cmd
}

// splitIngredients 同時接受空白分隔的參數與逗號分隔的清單
func splitIngredients(args []string) []string {
	var out []string
	for _, a := range args {
		for _, part := range strings.Split(a, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}

func printRecipe(w io.Writer, r *recipe.Recipe, detailed bool) {
	fav := ""
	if r.IsFavorite {
		fav = " ★"
	}
	fmt.Fprintf(w, "%s%s  [%s, %d min]  %s\n", r.Title, fav, r.Difficulty, r.CookingTime, r.ID)
	fmt.Fprintf(w, "  %s\n", r.Description)
	if !detailed {
		return
	}
	if len(r.Ingredients) > 0 {
		fmt.Fprintf(w, "  Ingredients: %s\n", strings.Join(r.Ingredients, ", "))
	}
	for i, step := range r.Instructions {
		fmt.Fprintf(w, "  %d. %s\n", i+1, step)
	}
	fmt.Fprintln(w)
}
